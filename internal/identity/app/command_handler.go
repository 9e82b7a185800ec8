package app

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"useridentity/internal/identity/domain/aggregate"
	"useridentity/internal/identity/domain/entities"
	"useridentity/internal/identity/ports/api"
	"useridentity/internal/identity/ports/repositories"
	svc "useridentity/internal/identity/ports/services"
	"useridentity/pkg/logger"
)

const (
	methodRegisterUser               = "RegisterUser"
	methodCreateUser                 = "CreateUser"
	methodCreateOrUpdateExternalUser = "CreateOrUpdateExternalUser"
	methodAuthenticateUser           = "AuthenticateUser"
	methodHandle                     = "Handle"

	msgStartRegistration     = "starting user registration"
	msgInvalidCommand        = "command validation failed"
	msgUsernameExists        = "user with this username already exists"
	msgEmailExists           = "user with this email already exists"
	msgUserCreated           = "user created successfully"
	msgStartExternalUpsert   = "starting external user upsert"
	msgExternalUserCreated   = "external user created"
	msgExternalUserReplaced  = "external user profile replaced"
	msgAuthenticationAttempt = "authentication attempt"
	msgUnknownUsername       = "authentication attempt with unknown username"
	msgInvalidPasswordAuth   = "invalid password provided"
	msgUserAuthenticated     = "user authenticated successfully"
	msgUnknownCommand        = "unknown command"

	msgErrCheckExistingUser = "failed to check existing user"
	msgErrTransition        = "aggregate transition failed"
	msgErrCommit            = "failed to commit events"
	msgErrPublish           = "failed to publish committed events"
	msgErrFindingUser       = "error finding user"
	msgErrLoadingUser       = "error loading user aggregate"
	msgErrVerifyingPassword = "error verifying password"

	errCtxValidatingCommand = "validating command"
	errCtxCheckingUsername  = "checking username"
	errCtxCheckingEmail     = "checking email"
	errCtxUsernameTaken     = "username already registered"
	errCtxEmailTaken        = "email already registered"
	errCtxCreatingUser      = "creating user"
	errCtxReplacingUser     = "replacing user"
	errCtxCommitting        = "committing events"
	errCtxFindingUser       = "finding user"
	errCtxLoadingUser       = "loading user"
	errCtxVerifyingPassword = "verifying password"
	errCtxAuditing          = "recording authentication"
	errCtxDispatching       = "dispatching command"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// externalUserNamespace - пространство имен UUID v5 для идентификаторов пользователей внешних провайдеров.
var externalUserNamespace = uuid.MustParse("6f1c2b8e-4d0a-5b7e-9c3f-2a1d8e7b6c50")

// ExternalUserID выводит идентификатор пользователя из ExternalID. Одинаковый ExternalID
// всегда дает один поток, поэтому параллельные первые upsert конфликтуют по версии.
func ExternalUserID(externalID string) entities.UserIdentifier {
	return entities.UserIdentifier(uuid.NewSHA1(externalUserNamespace, []byte(strings.TrimSpace(externalID))).String())
}

type handlerFunc func(ctx context.Context, cmd entities.Command) (any, error)

// CommandHandler реализует интерфейс api.CommandHandler.
type CommandHandler struct {
	repo       *UserRepository
	lookup     repositories.LookupStore
	passwords  svc.PasswordService
	publisher  svc.EventPublisher
	audit      bool
	generateID func() entities.UserIdentifier
	now        func() time.Time
	handlers   map[string]handlerFunc
}

// Option настраивает CommandHandler.
type Option func(*CommandHandler)

// WithAuditAuthentication включает запись события UserAuthenticated после успешной аутентификации.
func WithAuditAuthentication(enabled bool) Option {
	return func(h *CommandHandler) {
		h.audit = enabled
	}
}

// WithIDGenerator задает генератор идентификаторов новых пользователей.
func WithIDGenerator(generate func() entities.UserIdentifier) Option {
	return func(h *CommandHandler) {
		if generate != nil {
			h.generateID = generate
		}
	}
}

// WithClock задает источник времени событий.
func WithClock(now func() time.Time) Option {
	return func(h *CommandHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewCommandHandler создает новый экземпляр обработчика команд.
// publisher может быть nil, тогда события только сохраняются.
func NewCommandHandler(
	repo *UserRepository,
	lookup repositories.LookupStore,
	passwords svc.PasswordService,
	publisher svc.EventPublisher,
	opts ...Option,
) api.CommandHandler {
	h := &CommandHandler{
		repo:      repo,
		lookup:    lookup,
		passwords: passwords,
		publisher: publisher,
		generateID: func() entities.UserIdentifier {
			return entities.UserIdentifier(uuid.NewString())
		},
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	h.handlers = map[string]handlerFunc{
		entities.CommandRegisterUser: dispatch(func(ctx context.Context, c entities.RegisterUser) (any, error) {
			return h.RegisterUser(ctx, c)
		}),
		entities.CommandCreateUser: dispatch(func(ctx context.Context, c entities.CreateUser) (any, error) {
			return h.CreateUser(ctx, c)
		}),
		entities.CommandCreateOrUpdateExternalUser: dispatch(func(ctx context.Context, c entities.CreateOrUpdateExternalUser) (any, error) {
			return h.CreateOrUpdateExternalUser(ctx, c)
		}),
		entities.CommandAuthenticateUser: dispatch(func(ctx context.Context, c entities.AuthenticateUser) (any, error) {
			principal, err := h.AuthenticateUser(ctx, c)
			if principal == nil {
				return nil, err
			}
			return principal, err
		}),
	}

	return h
}

// dispatch приводит команду к конкретному типу значения.
func dispatch[C entities.Command](fn func(context.Context, C) (any, error)) handlerFunc {
	return func(ctx context.Context, cmd entities.Command) (any, error) {
		c, ok := cmd.(C)
		if !ok {
			return nil, entities.ErrUnknownCommand
		}
		return fn(ctx, c)
	}
}

// Handle маршрутизирует команду по ее имени через таблицу обработчиков.
func (h *CommandHandler) Handle(ctx context.Context, cmd entities.Command) (any, error) {
	if cmd == nil {
		return nil, fmt.Errorf("%s: %w", errCtxDispatching, entities.ErrNilCommand)
	}

	handle, ok := h.handlers[cmd.CommandName()]
	if !ok {
		logger.Log(ctx).Debug(ctx, msgUnknownCommand,
			zap.String("method", methodHandle), zap.String("command", cmd.CommandName()))
		return nil, fmt.Errorf("%s %q: %w", errCtxDispatching, cmd.CommandName(), entities.ErrUnknownCommand)
	}
	return handle(ctx, cmd)
}

// RegisterUser регистрирует пользователя сайта с ролью по умолчанию.
func (h *CommandHandler) RegisterUser(ctx context.Context, cmd entities.RegisterUser) (entities.UserIdentifier, error) {
	log := logger.Log(ctx).With(zap.String("method", methodRegisterUser), zap.String("username", cmd.Username))
	log.Debug(ctx, msgStartRegistration)

	return h.create(ctx, log, aggregate.Registration{
		ID:                cmd.UserID,
		Source:            entities.SourceSite,
		Username:          cmd.Username,
		Password:          cmd.Password,
		Email:             cmd.Email,
		FirstName:         cmd.FirstName,
		LastName:          cmd.LastName,
		ProfilePictureURL: cmd.ProfilePictureURL,
		Gender:            cmd.Gender,
		Roles:             []string{entities.DefaultRole},
	})
}

// CreateUser создает пользователя с ролями, заданными вызывающей стороной.
func (h *CommandHandler) CreateUser(ctx context.Context, cmd entities.CreateUser) (entities.UserIdentifier, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateUser), zap.String("username", cmd.Username))
	log.Debug(ctx, msgStartRegistration)

	if err := validateRoles(cmd.Roles); err != nil {
		log.Debug(ctx, msgInvalidCommand, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidatingCommand, err)
	}

	return h.create(ctx, log, aggregate.Registration{
		ID:                cmd.UserID,
		Source:            entities.SourceSite,
		Username:          cmd.Username,
		Password:          cmd.Password,
		Email:             cmd.Email,
		FirstName:         cmd.FirstName,
		LastName:          cmd.LastName,
		ProfilePictureURL: cmd.ProfilePictureURL,
		Gender:            cmd.Gender,
		Roles:             cmd.Roles,
	})
}

func (h *CommandHandler) create(
	ctx context.Context,
	log *logger.Logger,
	r aggregate.Registration,
) (entities.UserIdentifier, error) {
	if err := validateCredentials(r.Username, r.Email, r.Password); err != nil {
		log.Debug(ctx, msgInvalidCommand, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidatingCommand, err)
	}

	if err := h.ensureUnique(ctx, log, r.Username, r.Email); err != nil {
		return "", err
	}

	if r.ID.IsZero() {
		r.ID = h.generateID()
	}
	r.OccurredAt = h.now()

	state, event, err := aggregate.Register(ctx, h.passwords, entities.User{}, r)
	if err != nil {
		log.Error(ctx, msgErrTransition, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	if _, err := h.commit(ctx, log, state.ID, 0, []entities.Event{event}); err != nil {
		return "", err
	}

	log.Info(ctx, msgUserCreated, zap.String("user_id", state.ID.String()))
	return state.ID, nil
}

// CreateOrUpdateExternalUser создает пользователя внешнего провайдера или полностью
// перезаписывает профиль уже связанного пользователя. Идентификатор сохраняется.
func (h *CommandHandler) CreateOrUpdateExternalUser(
	ctx context.Context,
	cmd entities.CreateOrUpdateExternalUser,
) (entities.UserIdentifier, error) {
	log := logger.Log(ctx).With(zap.String("method", methodCreateOrUpdateExternalUser),
		zap.String("external_id", cmd.ExternalID))
	log.Debug(ctx, msgStartExternalUpsert)

	if err := validateExternal(cmd); err != nil {
		log.Debug(ctx, msgInvalidCommand, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidatingCommand, err)
	}

	profile := aggregate.ExternalProfile{
		ExternalID:        cmd.ExternalID,
		Email:             cmd.Email,
		Password:          cmd.Password,
		FirstName:         cmd.FirstName,
		LastName:          cmd.LastName,
		ProfilePictureURL: cmd.ProfilePictureURL,
		Gender:            cmd.Gender,
		OccurredAt:        h.now(),
	}

	record, err := h.lookup.FindByExternalID(ctx, cmd.ExternalID)
	if err != nil {
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if record == nil {
		email := entities.CanonicalEmail(cmd.Email)
		if err := h.ensureUnique(ctx, log, email, email); err != nil {
			return "", err
		}

		id := cmd.UserID
		if id.IsZero() {
			id = ExternalUserID(cmd.ExternalID)
		}

		state, event, err := aggregate.UpsertExternal(ctx, h.passwords, nil, id, profile)
		if err != nil {
			log.Error(ctx, msgErrTransition, zap.Error(err))
			return "", fmt.Errorf("%s: %w", errCtxCreatingUser, err)
		}
		if _, err := h.commit(ctx, log, state.ID, 0, []entities.Event{event}); err != nil {
			return "", err
		}

		log.Info(ctx, msgExternalUserCreated, zap.String("user_id", state.ID.String()))
		return state.ID, nil
	}

	if email := entities.CanonicalEmail(cmd.Email); email != record.Email {
		if err := h.ensureUnique(ctx, log, email, email); err != nil {
			return "", err
		}
	}

	existing, err := h.repo.Load(ctx, record.ID)
	if err != nil {
		log.Error(ctx, msgErrLoadingUser, zap.String("user_id", record.ID.String()), zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxLoadingUser, err)
	}

	state, event, err := aggregate.UpsertExternal(ctx, h.passwords, &existing, record.ID, profile)
	if err != nil {
		log.Error(ctx, msgErrTransition, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxReplacingUser, err)
	}
	if _, err := h.commit(ctx, log, state.ID, existing.Version, []entities.Event{event}); err != nil {
		return "", err
	}

	log.Info(ctx, msgExternalUserReplaced, zap.String("user_id", state.ID.String()))
	return state.ID, nil
}

// AuthenticateUser проверяет учетные данные. Неизвестный пользователь и неверный
// пароль дают одинаковый результат: nil, nil.
func (h *CommandHandler) AuthenticateUser(ctx context.Context, cmd entities.AuthenticateUser) (*entities.Principal, error) {
	username := entities.CanonicalUsername(cmd.Username)
	log := logger.Log(ctx).With(zap.String("method", methodAuthenticateUser), zap.String("username", username))
	log.Debug(ctx, msgAuthenticationAttempt)

	if username == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingCommand, entities.ErrEmptyUsername)
	}
	if cmd.Password == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingCommand, entities.ErrEmptyPassword)
	}

	record, err := h.lookup.FindByUsername(ctx, username)
	if err != nil {
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}
	if record == nil {
		log.Debug(ctx, msgUnknownUsername)
		return nil, nil
	}

	credentials := entities.User{ID: record.ID, PasswordDigest: record.PasswordDigest, Version: record.Version}
	ok, err := aggregate.Authenticate(ctx, h.passwords, credentials, cmd.Password)
	if err != nil {
		log.Error(ctx, msgErrVerifyingPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxVerifyingPassword, err)
	}
	if !ok {
		log.Debug(ctx, msgInvalidPasswordAuth)
		return nil, nil
	}

	if h.audit {
		if err := h.recordAuthentication(ctx, log, record.ID); err != nil {
			return nil, err
		}
	}

	log.Info(ctx, msgUserAuthenticated, zap.String("user_id", record.ID.String()))
	return entities.NewPrincipal(record), nil
}

func (h *CommandHandler) recordAuthentication(ctx context.Context, log *logger.Logger, id entities.UserIdentifier) error {
	state, err := h.repo.Load(ctx, id)
	if err != nil {
		log.Error(ctx, msgErrLoadingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxAuditing, err)
	}

	_, event, err := aggregate.Authenticated(state, h.now())
	if err != nil {
		log.Error(ctx, msgErrTransition, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxAuditing, err)
	}

	if _, err := h.commit(ctx, log, id, state.Version, []entities.Event{event}); err != nil {
		return fmt.Errorf("%s: %w", errCtxAuditing, err)
	}
	return nil
}

func (h *CommandHandler) ensureUnique(ctx context.Context, log *logger.Logger, username, email string) error {
	taken, err := h.lookup.ExistsByUsername(ctx, entities.CanonicalUsername(username))
	if err != nil {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingUsername, err)
	}
	if taken {
		log.Debug(ctx, msgUsernameExists)
		return fmt.Errorf("%s: %w", errCtxUsernameTaken, entities.ErrUsernameTaken)
	}

	taken, err = h.lookup.ExistsByEmail(ctx, entities.CanonicalEmail(email))
	if err != nil {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return fmt.Errorf("%s: %w", errCtxCheckingEmail, err)
	}
	if taken {
		log.Debug(ctx, msgEmailExists)
		return fmt.Errorf("%s: %w", errCtxEmailTaken, entities.ErrEmailTaken)
	}
	return nil
}

// commit сохраняет события и после фиксации передает их публикатору.
// Ошибка публикации только логируется: проекция догоняет поток позже.
func (h *CommandHandler) commit(
	ctx context.Context,
	log *logger.Logger,
	id entities.UserIdentifier,
	expectedVersion int,
	events []entities.Event,
) (int, error) {
	version, err := h.repo.Add(ctx, id, expectedVersion, events)
	if err != nil {
		log.Warn(ctx, msgErrCommit, zap.String("user_id", id.String()), zap.Error(err))
		return 0, fmt.Errorf("%s: %w", errCtxCommitting, err)
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(ctx, entities.Record(expectedVersion, events)); err != nil {
			log.Error(ctx, msgErrPublish, zap.String("user_id", id.String()), zap.Error(err))
		}
	}
	return version, nil
}

func validateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return entities.ErrEmptyUsername
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return entities.ErrEmptyPassword
	}
	return nil
}

func validateExternal(cmd entities.CreateOrUpdateExternalUser) error {
	if strings.TrimSpace(cmd.ExternalID) == "" {
		return entities.ErrEmptyExternalID
	}
	if err := validateEmail(cmd.Email); err != nil {
		return err
	}
	if cmd.Password == "" {
		return entities.ErrEmptyPassword
	}
	return nil
}

func validateRoles(roles []string) error {
	if len(roles) == 0 {
		return entities.ErrEmptyRoles
	}
	for _, role := range roles {
		if strings.TrimSpace(role) == "" {
			return entities.ErrEmptyRoles
		}
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return entities.ErrInvalidEmail
	}
	if !emailRegex.MatchString(email) {
		return entities.ErrInvalidEmail
	}
	return nil
}
