package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const membersTable = "members"

type MemberRepository struct {
	db   *sqlx.DB
	psql sq.StatementBuilderType
	now  func() time.Time
}

func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

// MemberRepositoryFilter narrows member queries. A zero filter matches every row.
type MemberRepositoryFilter struct {
	ID               *uuid.UUID
	Email            *string
	LastNameContains *string
	UserID           *string
}

func (mq *MemberRepository) buildQuery(filter MemberRepositoryFilter, queryType QueryType) sq.SelectBuilder {
	var builder sq.SelectBuilder
	switch queryType {
	case QueryTypeCount:
		builder = mq.psql.Select("COUNT(*)").From(membersTable)
	default:
		builder = mq.psql.Select("*").From(membersTable)
	}

	if filter.ID != nil {
		builder = builder.Where(sq.Eq{"id": filter.ID.String()})
	}
	if filter.Email != nil {
		builder = builder.Where(sq.Expr("LOWER(email) = LOWER(?)", *filter.Email))
	}
	if filter.LastNameContains != nil {
		builder = builder.Where(sq.ILike{"last_name": "%" + escapeLike(*filter.LastNameContains) + "%"})
	}
	if filter.UserID != nil {
		builder = builder.Where(sq.Eq{"user_id": *filter.UserID})
	}

	return builder
}

func (mq *MemberRepository) Get(ctx context.Context, filter MemberRepositoryFilter) (*Member, error) {
	query, args, err := mq.buildQuery(filter, QueryTypeSelect).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var member Member
	if err := mq.db.GetContext(ctx, &member, query, args...); err != nil {
		return nil, err
	}
	return &member, nil
}

func (mq *MemberRepository) Exists(ctx context.Context, filter MemberRepositoryFilter) (bool, error) {
	query, args, err := mq.buildQuery(filter, QueryTypeCount).ToSql()
	if err != nil {
		return false, err
	}

	var count int
	if err := mq.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (mq *MemberRepository) List(ctx context.Context, filter MemberRepositoryFilter, opts QueryOptions) (*ListResult[Member], error) {
	builder, sortResult, err := ApplyPagination(mq.buildQuery(filter, QueryTypeSelect), opts)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var members []*Member
	if err := mq.db.SelectContext(ctx, &members, query, args...); err != nil {
		return nil, err
	}

	result := &ListResult[Member]{Items: members}
	limit := int(ClampLimit(opts.Limit))
	if len(members) > limit {
		next := members[limit]
		cursor := EncodeCursor(next.sortValue(sortResult.Column), next.ID)
		result.Items = members[:limit]
		result.NextCursor = &cursor
	}
	if result.Items == nil {
		result.Items = []*Member{}
	}

	return result, nil
}

func (mq *MemberRepository) Create(ctx context.Context, member *Member, tx *sqlx.Tx) (*Member, error) {
	builder := mq.psql.Insert(membersTable).
		Columns("first_name", "last_name", "phone", "email", "picture", "requested_at", "device_id", "user_id").
		Values(member.FirstName, member.LastName, member.Phone, member.Email, member.Picture, member.RequestedAt, member.DeviceID, member.UserID).
		Suffix("RETURNING *")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var createdMember Member
	if tx != nil {
		err = tx.GetContext(ctx, &createdMember, query, args...)
		return &createdMember, err
	}

	err = mq.db.GetContext(ctx, &createdMember, query, args...)
	return &createdMember, err
}

// Update overwrites the form fields of an existing row. The picture and email
// validation timestamp have their own operations.
func (mq *MemberRepository) Update(ctx context.Context, member *Member, tx *sqlx.Tx) (*Member, error) {
	builder := mq.psql.Update(membersTable).
		Set("first_name", member.FirstName).
		Set("last_name", member.LastName).
		Set("phone", member.Phone).
		Set("email", member.Email).
		Set("requested_at", member.RequestedAt).
		Set("device_id", member.DeviceID).
		Set("user_id", member.UserID).
		Set("updated_at", mq.now()).
		Where(sq.Eq{"id": member.ID.String()}).
		Suffix("RETURNING *")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var updatedMember Member
	if tx != nil {
		err = tx.GetContext(ctx, &updatedMember, query, args...)
		return &updatedMember, err
	}

	err = mq.db.GetContext(ctx, &updatedMember, query, args...)
	return &updatedMember, err
}

func (mq *MemberRepository) SetPicture(ctx context.Context, id uuid.UUID, picture string) (*Member, error) {
	return mq.setColumn(ctx, id, "picture", ToNullString(&picture))
}

func (mq *MemberRepository) MarkEmailValidated(ctx context.Context, id uuid.UUID, at time.Time) (*Member, error) {
	return mq.setColumn(ctx, id, "email_validated_at", ToNullTime(&at))
}

func (mq *MemberRepository) setColumn(ctx context.Context, id uuid.UUID, column string, value any) (*Member, error) {
	query, args, err := mq.psql.Update(membersTable).
		Set(column, value).
		Set("updated_at", mq.now()).
		Where(sq.Eq{"id": id.String()}).
		Suffix("RETURNING *").
		ToSql()
	if err != nil {
		return nil, err
	}

	var member Member
	if err := mq.db.GetContext(ctx, &member, query, args...); err != nil {
		return nil, err
	}
	return &member, nil
}

// Delete removes the row, returning sql.ErrNoRows when nothing matched.
func (mq *MemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := mq.psql.Delete(membersTable).Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return err
	}

	res, err := mq.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Truncate empties the table. Used by the development seeder.
func (mq *MemberRepository) Truncate(ctx context.Context) error {
	_, err := mq.db.ExecContext(ctx, "TRUNCATE TABLE "+membersTable)
	return err
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '\\', '%', '_':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
