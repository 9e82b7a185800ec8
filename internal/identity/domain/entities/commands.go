package entities

// Имена команд для таблицы диспетчеризации.
const (
	CommandRegisterUser               = "RegisterUser"
	CommandCreateUser                 = "CreateUser"
	CommandCreateOrUpdateExternalUser = "CreateOrUpdateExternalUser"
	CommandAuthenticateUser           = "AuthenticateUser"
)

// Command - намерение изменить состояние. Команды не сохраняются.
type Command interface {
	CommandName() string
}

// RegisterUser - самостоятельная регистрация на сайте с ролью по умолчанию.
type RegisterUser struct {
	UserID            UserIdentifier
	Username          string
	Password          string
	Email             string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
}

func (RegisterUser) CommandName() string { return CommandRegisterUser }

// CreateUser - создание пользователя с ролями, заданными вызывающей стороной.
type CreateUser struct {
	UserID            UserIdentifier
	Username          string
	Password          string
	Email             string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
	Roles             []string
}

func (CreateUser) CommandName() string { return CommandCreateUser }

// CreateOrUpdateExternalUser - upsert пользователя внешнего провайдера по ExternalID.
// UserID используется только при создании нового пользователя.
type CreateOrUpdateExternalUser struct {
	UserID            UserIdentifier
	ExternalID        string
	Email             string
	Password          string
	FirstName         string
	LastName          string
	ProfilePictureURL string
	Gender            string
}

func (CreateOrUpdateExternalUser) CommandName() string { return CommandCreateOrUpdateExternalUser }

// AuthenticateUser - проверка учетных данных.
type AuthenticateUser struct {
	Username string
	Password string
}

func (AuthenticateUser) CommandName() string { return CommandAuthenticateUser }
