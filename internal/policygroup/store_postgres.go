package policygroup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	dErrors "custodia/pkg/domainerrors"
)

// PostgresStore persists policy groups in two tables: policy_groups and
// data_assignments. The additive-merge invariant is enforced in SQL with
// ON CONFLICT DO NOTHING on the assignment identity, so concurrent assigns
// for the same group cannot lose items.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, group PolicyGroup) error {
	permissions, prohibitions, err := marshalRules(group)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO policy_groups (
			id, subject_id, name, description, permissions, prohibitions,
			constraint_purpose, expiration, requires_notification,
			ai_allow_training, ai_algorithm, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		group.ID, group.SubjectID, group.Name, group.Description,
		permissions, prohibitions,
		group.Constraints.Purpose, group.Constraints.Expiration, group.Constraints.RequiresNotification,
		group.AIRestrictions.AllowTraining, group.AIRestrictions.Algorithm,
		group.Version, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert policy group: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, subjectID, groupID string) (PolicyGroup, error) {
	row := s.pool.QueryRow(ctx, selectGroup+` WHERE id = $1 AND subject_id = $2`, groupID, subjectID)
	return scanGroup(row)
}

func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string) ([]PolicyGroup, error) {
	rows, err := s.pool.Query(ctx, selectGroup+` WHERE subject_id = $1 ORDER BY created_at`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query policy groups: %w", err)
	}
	defer rows.Close()

	var out []PolicyGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, group PolicyGroup) error {
	permissions, prohibitions, err := marshalRules(group)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE policy_groups
		SET name = $3, description = $4, permissions = $5, prohibitions = $6,
		    constraint_purpose = $7, expiration = $8, requires_notification = $9,
		    ai_allow_training = $10, ai_algorithm = $11, version = $12, updated_at = $13
		WHERE id = $1 AND subject_id = $2
	`,
		group.ID, group.SubjectID, group.Name, group.Description,
		permissions, prohibitions,
		group.Constraints.Purpose, group.Constraints.Expiration, group.Constraints.RequiresNotification,
		group.AIRestrictions.AllowTraining, group.AIRestrictions.Algorithm,
		group.Version, group.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update policy group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, subjectID, groupID string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM policy_groups WHERE id = $1 AND subject_id = $2`, groupID, subjectID)
	if err != nil {
		return fmt.Errorf("delete policy group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	return nil
}

func (s *PostgresStore) AddAssignments(ctx context.Context, groupID string, assignments []DataAssignment) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assignment tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM policy_groups WHERE id = $1)`, groupID).Scan(&exists); err != nil {
		return fmt.Errorf("check policy group: %w", err)
	}
	if !exists {
		return dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}

	for _, a := range assignments {
		a.PolicyGroupID = groupID
		if _, err := tx.Exec(ctx, `
			INSERT INTO data_assignments (group_id, assignment_key, source, property, table_name, record_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (group_id, assignment_key) DO NOTHING
		`, groupID, a.Key(), a.Source, a.Item.Property, a.Item.TableName, a.Item.RecordID); err != nil {
			return fmt.Errorf("insert data assignment: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) ListAssignments(ctx context.Context, groupID string) ([]DataAssignment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT group_id, source, property, table_name, record_id
		FROM data_assignments
		WHERE group_id = $1
		ORDER BY assignment_key
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("query data assignments: %w", err)
	}
	defer rows.Close()

	out := []DataAssignment{}
	for rows.Next() {
		var a DataAssignment
		if err := rows.Scan(&a.PolicyGroupID, &a.Source, &a.Item.Property, &a.Item.TableName, &a.Item.RecordID); err != nil {
			return nil, fmt.Errorf("scan data assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindCovering(ctx context.Context, subjectID, source string, item DataItem) ([]PolicyGroup, error) {
	key := DataAssignment{Source: source, Item: item}.Key()
	rows, err := s.pool.Query(ctx, selectGroup+`
		WHERE subject_id = $1
		  AND id IN (SELECT group_id FROM data_assignments WHERE assignment_key = $2)
	`, subjectID, key)
	if err != nil {
		return nil, fmt.Errorf("query covering groups: %w", err)
	}
	defer rows.Close()

	var out []PolicyGroup
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, group)
	}
	return out, rows.Err()
}

func (s *PostgresStore) IsProtected(ctx context.Context, subjectID, source string, item DataItem) (bool, error) {
	key := DataAssignment{Source: source, Item: item}.Key()
	var protected bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM data_assignments da
			JOIN policy_groups pg ON pg.id = da.group_id
			WHERE pg.subject_id = $1 AND da.assignment_key = $2
		)
	`, subjectID, key).Scan(&protected)
	if err != nil {
		return false, fmt.Errorf("check protection: %w", err)
	}
	return protected, nil
}

const selectGroup = `
	SELECT id, subject_id, name, description, permissions, prohibitions,
	       constraint_purpose, expiration, requires_notification,
	       ai_allow_training, ai_algorithm, version, created_at, updated_at
	FROM policy_groups`

func marshalRules(group PolicyGroup) ([]byte, []byte, error) {
	permissions, err := json.Marshal(group.Permissions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal permissions: %w", err)
	}
	prohibitions, err := json.Marshal(group.Prohibitions)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal prohibitions: %w", err)
	}
	return permissions, prohibitions, nil
}

func scanGroup(row pgx.Row) (PolicyGroup, error) {
	var (
		group                     PolicyGroup
		permissions, prohibitions []byte
	)
	err := row.Scan(
		&group.ID, &group.SubjectID, &group.Name, &group.Description,
		&permissions, &prohibitions,
		&group.Constraints.Purpose, &group.Constraints.Expiration, &group.Constraints.RequiresNotification,
		&group.AIRestrictions.AllowTraining, &group.AIRestrictions.Algorithm,
		&group.Version, &group.CreatedAt, &group.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return PolicyGroup{}, dErrors.New(dErrors.CodeNotFound, "policy group not found")
	}
	if err != nil {
		return PolicyGroup{}, fmt.Errorf("scan policy group: %w", err)
	}
	if err := json.Unmarshal(permissions, &group.Permissions); err != nil {
		return PolicyGroup{}, fmt.Errorf("unmarshal permissions: %w", err)
	}
	if err := json.Unmarshal(prohibitions, &group.Prohibitions); err != nil {
		return PolicyGroup{}, fmt.Errorf("unmarshal prohibitions: %w", err)
	}
	return group, nil
}
