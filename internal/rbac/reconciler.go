package rbac

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/clinical-portal/internal/domain"
	"github.com/spec-kit/clinical-portal/internal/repository"
)

// ReconcileResult reports what a reconciliation run actually wrote.
type ReconcileResult struct {
	Created int
	Updated int
}

// Reconciler aligns the persisted role set with a canonical catalog at
// process start.
type Reconciler struct {
	roles  repository.RoleRepository
	logger *zap.Logger
}

// NewReconciler builds a reconciler over the given role store.
func NewReconciler(roles repository.RoleRepository, logger *zap.Logger) *Reconciler {
	return &Reconciler{roles: roles, logger: logger}
}

// Reconcile matches persisted roles against the catalog by name. Missing
// roles are created, roles whose permission set drifted are overwritten with
// the canonical set, and persisted roles unknown to the catalog are left
// untouched. The operation is idempotent: an unchanged catalog produces no
// writes.
//
// Storage errors are logged and reported but must not abort startup; the
// caller keeps serving with whatever role data is already persisted.
func (r *Reconciler) Reconcile(ctx context.Context, catalog Catalog) (ReconcileResult, error) {
	var result ReconcileResult

	if err := catalog.Validate(); err != nil {
		return result, err
	}

	persisted, err := r.roles.GetAll(ctx)
	if err != nil {
		r.logger.Error("load persisted roles", zap.Error(err))
		return result, err
	}

	byName := make(map[string]*domain.Role, len(persisted))
	for _, role := range persisted {
		byName[role.Name] = role
	}

	for _, def := range catalog.Roles {
		existing, ok := byName[def.Name]
		if !ok {
			role := &domain.Role{Name: def.Name, Permissions: def.Permissions}
			if err := r.roles.Create(ctx, role); err != nil {
				r.logger.Error("create role", zap.String("role", def.Name), zap.Error(err))
				return result, err
			}
			result.Created++
			r.logger.Info("created role", zap.String("role", def.Name),
				zap.Int("permissions", len(def.Permissions)))
			continue
		}

		if domain.NewPermissionSet(existing.Permissions).Equal(domain.NewPermissionSet(def.Permissions)) {
			continue
		}

		if err := r.roles.UpdatePermissions(ctx, existing.ID, def.Permissions); err != nil {
			r.logger.Error("update role permissions", zap.String("role", def.Name), zap.Error(err))
			return result, err
		}
		result.Updated++
		r.logger.Info("updated role permissions", zap.String("role", def.Name),
			zap.Int("permissions", len(def.Permissions)))
	}

	r.logger.Info("role reconciliation complete",
		zap.Int("catalog_version", catalog.Version),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}
