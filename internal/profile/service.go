package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mealshare/mealshare-be/internal/auth"
	"github.com/mealshare/mealshare-be/internal/models"
	"github.com/mealshare/mealshare-be/internal/storage"
)

// ErrRoleRequired is returned when role selection is attempted without a role.
var ErrRoleRequired = errors.New("role is required")

// Service reconciles a user's profile row and volunteer flag across the
// row store and the identity metadata store. Each call runs to
// completion within one request: resolve the authoritative role, fetch
// the existing row, build the allowlisted payload, issue exactly one
// atomic upsert, then reconcile the volunteer flag best-effort.
type Service struct {
	profiles storage.ProfileStore
	metadata storage.IdentityMetadata
	log      *zap.Logger
	now      func() time.Time
}

// NewService constructs the reconciliation service.
func NewService(profiles storage.ProfileStore, metadata storage.IdentityMetadata, log *zap.Logger) *Service {
	return &Service{
		profiles: profiles,
		metadata: metadata,
		log:      log,
		now:      time.Now,
	}
}

// Result reports the reconciled state after an operation.
type Result struct {
	Role            models.ShortRole
	PersistedRole   models.PersistedRole
	Volunteer       bool
	VolunteerSynced bool
	Completed       bool
	Row             map[string]any
}

// SelectRole records the user's chosen role. Extra fields ride along
// through the same allowlist merge as profile completion.
func (s *Service) SelectRole(ctx context.Context, id auth.Identity, shortRole string, volunteer bool, extra map[string]any) (Result, error) {
	if strings.TrimSpace(shortRole) == "" {
		return Result{}, ErrRoleRequired
	}
	return s.apply(ctx, id, shortRole, volunteer, extra, false)
}

// CompleteProfile persists the submitted free-form fields and marks the
// profile completed. An optional "role" key re-resolves the role; an
// optional "volunteer" key acts as the explicit volunteer indicator.
func (s *Service) CompleteProfile(ctx context.Context, id auth.Identity, fields map[string]any) (Result, error) {
	shortRole, _ := fields["role"].(string)
	volunteer, _ := fields["volunteer"].(bool)
	return s.apply(ctx, id, shortRole, volunteer, fields, true)
}

// View returns the current profile for display. Returns
// storage.ErrNotFound when no row exists yet.
func (s *Service) View(ctx context.Context, id auth.Identity) (Result, error) {
	row, err := s.profiles.GetByUserID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("fetch profile: %w", err)
	}

	volunteer, synced := s.readVolunteer(ctx, id)
	persisted := rowRole(row)
	display, mapped := models.ToDisplayRole(persisted, volunteer)
	if !mapped {
		s.log.Warn("unmapped persisted role", zap.String("role", string(persisted)), zap.String("user_id", id.ID.String()))
	}
	completed, _ := row["completed"].(bool)

	return Result{
		Role:            display,
		PersistedRole:   persisted,
		Volunteer:       volunteer,
		VolunteerSynced: synced,
		Completed:       completed,
		Row:             row,
	}, nil
}

func (s *Service) apply(ctx context.Context, id auth.Identity, shortRole string, volunteerIndicator bool, submitted map[string]any, markCompleted bool) (Result, error) {
	shortRole = strings.TrimSpace(shortRole)

	// "not found" is a normal outcome here, not a failure.
	existing, err := s.profiles.GetByUserID(ctx, id.ID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return Result{}, fmt.Errorf("fetch profile: %w", err)
		}
		existing = nil
	}

	// Caller-submitted role wins over a stale row value; the row value
	// wins over the default.
	var persisted models.PersistedRole
	switch {
	case shortRole != "":
		var mapped bool
		persisted, mapped = models.ToPersistedRole(models.ShortRole(shortRole))
		if !mapped {
			s.log.Warn("unmapped role passed through", zap.String("role", shortRole), zap.String("user_id", id.ID.String()))
		}
	case existing != nil && string(rowRole(existing)) != "":
		persisted = rowRole(existing)
	default:
		persisted = models.PersistedIndividual
	}

	if markCompleted {
		copied := make(map[string]any, len(submitted)+1)
		for k, v := range submitted {
			copied[k] = v
		}
		copied["completed"] = true
		submitted = copied
	}

	payload := buildPayload(existing, submitted, persisted, id.ID, id.Email, s.now())

	// Exactly one write per invocation.
	row, err := s.profiles.Upsert(ctx, payload)
	if err != nil {
		return Result{}, fmt.Errorf("write profile: %w", err)
	}

	// Volunteer-flag reconciliation runs strictly after the row write and
	// never fails the operation.
	wantVolunteer := volunteerIndicator || models.ShortRole(shortRole) == models.RoleVolunteer
	volunteer := wantVolunteer
	synced := true
	if wantVolunteer {
		if err := s.metadata.SetVolunteer(ctx, id.ID, true); err != nil {
			synced = false
			s.log.Warn("volunteer flag write failed", zap.String("user_id", id.ID.String()), zap.Error(err))
		}
	} else {
		volunteer, synced = s.readVolunteer(ctx, id)
	}

	display, _ := models.ToDisplayRole(persisted, volunteer)
	completed, _ := row["completed"].(bool)

	return Result{
		Role:            display,
		PersistedRole:   persisted,
		Volunteer:       volunteer,
		VolunteerSynced: synced,
		Completed:       completed,
		Row:             row,
	}, nil
}

func (s *Service) readVolunteer(ctx context.Context, id auth.Identity) (volunteer, synced bool) {
	flag, err := s.metadata.IsVolunteer(ctx, id.ID)
	if err != nil {
		s.log.Warn("volunteer flag read failed", zap.String("user_id", id.ID.String()), zap.Error(err))
		return false, false
	}
	return flag, true
}

func rowRole(row map[string]any) models.PersistedRole {
	role, _ := row["role"].(string)
	return models.PersistedRole(role)
}
