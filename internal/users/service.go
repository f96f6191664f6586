package users

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/warungpos/warungpos/internal/platform/db"
	"github.com/warungpos/warungpos/internal/shared"
)

// AuditRecorder persists an audit trail entry for account changes.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Input carries the submitted fields of a user form. On update an empty
// Password means "keep the stored hash"; it never clears the credential.
type Input struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
	RoleIDs              []int64
}

// Service owns the user management rules.
type Service struct {
	repo   Repository
	audit  AuditRecorder
	logger *slog.Logger
}

// NewService builds a Service instance. The audit recorder may be nil.
func NewService(repo Repository, audit AuditRecorder, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// List returns one page of users matching the optional search term.
func (s *Service) List(ctx context.Context, search string, page int) ([]User, shared.Pagination, error) {
	p := shared.NewPagination(page, shared.PerPage, 0)
	items, total, err := s.repo.List(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return items, shared.NewPagination(page, shared.PerPage, total), nil
}

// Get fetches one user with their role set attached.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create validates the input, hashes the password and inserts the account
// together with its role assignments.
func (s *Service) Create(ctx context.Context, in Input) (User, error) {
	if errs, err := s.validate(ctx, in, true, 0); err != nil {
		return User{}, err
	} else if errs.Any() {
		return User{}, errs
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	created, err := s.repo.Create(ctx, User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: string(hash),
	}, in.RoleIDs)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, shared.FieldErrors{"email": "email sudah digunakan"}
		}
		return User{}, err
	}
	s.recordAudit(ctx, "users.create", created.ID)
	return created, nil
}

// Update modifies an existing account. The password column is only touched
// when a new password was submitted; the role set is synced to exactly the
// submitted IDs inside the same transaction.
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	if errs, err := s.validate(ctx, in, false, id); err != nil {
		return err
	} else if errs.Any() {
		return errs
	}

	var passwordHash *string
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		h := string(hash)
		passwordHash = &h
	}

	err := s.repo.Update(ctx, id,
		strings.TrimSpace(in.Name),
		strings.ToLower(strings.TrimSpace(in.Email)),
		passwordHash, in.RoleIDs)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return shared.FieldErrors{"email": "email sudah digunakan"}
		}
		return err
	}
	s.recordAudit(ctx, "users.update", id)
	return nil
}

// Delete removes the account. Role assignments go with it via the foreign
// key cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "users.delete", id)
	return nil
}

// recordAudit writes a best-effort trail entry; failures only log.
func (s *Service) recordAudit(ctx context.Context, action string, userID int64) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if sess := shared.SessionFromContext(ctx); sess != nil {
		if id, err := strconv.ParseInt(sess.User(), 10, 64); err == nil {
			actorID = id
		}
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "users",
		EntityID: strconv.FormatInt(userID, 10),
	})
	if err != nil && s.logger != nil {
		s.logger.Warn("audit record", slog.Any("error", err))
	}
}

func (s *Service) validate(ctx context.Context, in Input, passwordRequired bool, excludeID int64) (shared.FieldErrors, error) {
	errs := shared.FieldErrors{}
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" {
		errs["name"] = "nama wajib diisi"
	}
	if email == "" {
		errs["email"] = "email wajib diisi"
	} else if !strings.Contains(email, "@") {
		errs["email"] = "email tidak valid"
	}
	if passwordRequired && in.Password == "" {
		errs["password"] = "password wajib diisi"
	}
	if in.Password != "" && in.Password != in.PasswordConfirmation {
		errs["password"] = "konfirmasi password tidak cocok"
	}

	if _, ok := errs["email"]; !ok {
		taken, err := s.repo.EmailTaken(ctx, email, excludeID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs["email"] = "email sudah digunakan"
		}
	}
	return errs, nil
}
