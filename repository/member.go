/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"

	"github.com/tomoncle/datarepo/dto"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/projection"
	"github.com/tomoncle/datarepo/query"
	"github.com/tomoncle/datarepo/types"
)

// Hand-written member queries. Columns are qualified with the member alias.
var (
	namedFindByUserName2 = "m.user_name = ?"
	namedFindUser        = "m.user_name = ? AND m.age = ?"
)

// MemberRepository holds the member queries. Derived methods are parsed
// when the repository is built.
type MemberRepository struct {
	*baseRepositoryImpl[entity.Member]

	byUserNameAndAgeGreaterThan *query.Descriptor
	memberListByUserName        *query.Descriptor
	memberByUserName            *query.Descriptor
	optionalMemberByUserName    *query.Descriptor
	byAge                       *query.Descriptor
	byUserName                  *query.Descriptor
	entityGraphByUserName       *query.Descriptor
	readOnlyByUserName          *query.Descriptor
	lockByUserName              *query.Descriptor
	byTeamName                  *query.Descriptor
	top3ByAge                   *query.Descriptor
	countByAge                  *query.Descriptor
	existsByUserName            *query.Descriptor
	deleteByUserName            *query.Descriptor
}

func NewMemberRepository(m *Manager) (*MemberRepository, error) {
	base, err := newBaseRepository[entity.Member](m)
	if err != nil {
		return nil, err
	}
	r := &MemberRepository{baseRepositoryImpl: base}
	methods := []struct {
		dst  **query.Descriptor
		name string
	}{
		{&r.byUserNameAndAgeGreaterThan, "FindByUserNameAndAgeGreaterThan"},
		{&r.memberListByUserName, "FindMemberListByUserName"},
		{&r.memberByUserName, "FindMemberByUserName"},
		{&r.optionalMemberByUserName, "FindOptionalMemberByUserName"},
		{&r.byAge, "FindByAge"},
		{&r.byUserName, "FindByUserName"},
		{&r.entityGraphByUserName, "FindEntityGraphByUserName"},
		{&r.readOnlyByUserName, "FindReadOnlyByUserName"},
		{&r.lockByUserName, "FindLockByUserName"},
		{&r.byTeamName, "FindByTeam_TeamNameOrderByAgeDesc"},
		{&r.top3ByAge, "FindTop3ByOrderByAgeDesc"},
		{&r.countByAge, "CountByAge"},
		{&r.existsByUserName, "ExistsByUserName"},
		{&r.deleteByUserName, "DeleteByUserName"},
	}
	for _, md := range methods {
		d, err := query.ParseMethod(md.name, base.meta)
		if err != nil {
			return nil, err
		}
		*md.dst = d
	}
	return r, nil
}

func MustNewMemberRepository(m *Manager) *MemberRepository {
	r, err := NewMemberRepository(m)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *MemberRepository) FindByUserNameAndAgeGreaterThan(ctx context.Context, userName string, age int) ([]*entity.Member, error) {
	return r.FindBy(ctx, r.byUserNameAndAgeGreaterThan, userName, age)
}

func (r *MemberRepository) FindByUserName2(ctx context.Context, userName string) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(query.Filter(namedFindByUserName2, userName)))
}

func (r *MemberRepository) FindUser(ctx context.Context, userName string, age int) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(query.Filter(namedFindUser, userName, age)))
}

func (r *MemberRepository) FindUserNameList(ctx context.Context) ([]string, error) {
	return Project[entity.Member](ctx, r, query.New(nil), projection.UserNameShape)
}

// FindMemberDto lists members that belong to a team, with the team name.
func (r *MemberRepository) FindMemberDto(ctx context.Context) ([]dto.MemberDto, error) {
	return Project[entity.Member](ctx, r, query.New(nil), projection.MemberDtoShape)
}

func (r *MemberRepository) FindByNames(ctx context.Context, names []string) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(query.In("UserName", names)))
}

func (r *MemberRepository) FindMemberListByUserName(ctx context.Context, userName string) ([]*entity.Member, error) {
	return r.FindBy(ctx, r.memberListByUserName, userName)
}

// FindMemberByUserName returns nil when no member matches.
func (r *MemberRepository) FindMemberByUserName(ctx context.Context, userName string) (*entity.Member, error) {
	q, err := r.memberByUserName.Bind(userName)
	if err != nil {
		return nil, err
	}
	return r.FindSingle(ctx, q)
}

func (r *MemberRepository) FindOptionalMemberByUserName(ctx context.Context, userName string) (types.Optional[*entity.Member], error) {
	q, err := r.optionalMemberByUserName.Bind(userName)
	if err != nil {
		return types.Empty[*entity.Member](), err
	}
	return r.FindOptional(ctx, q)
}

func (r *MemberRepository) FindByAge(ctx context.Context, age int, page *types.PageRequest) (*types.Page[*entity.Member], error) {
	q, err := r.byAge.Bind(age)
	if err != nil {
		return nil, err
	}
	return r.FindPage(ctx, q, page)
}

func (r *MemberRepository) FindByUserName(ctx context.Context, userName string, page *types.PageRequest) (*types.Slice[*entity.Member], error) {
	q, err := r.byUserName.Bind(userName)
	if err != nil {
		return nil, err
	}
	return r.FindSlice(ctx, q, page)
}

// FindByAge2 pages members of the given age, loading their teams. The total
// is counted without the join.
func (r *MemberRepository) FindByAge2(ctx context.Context, age int, page *types.PageRequest) (*types.Page[*entity.Member], error) {
	q := query.New(query.Eq("Age", age)).
		WithGraph("Team").
		WithCount(query.Filter("m.age = ?", age))
	return r.FindPage(ctx, q, page)
}

// BulkAgePlus adds one to the age of every member at least age years old.
// Members already loaded keep their old age until the session is cleared.
func (r *MemberRepository) BulkAgePlus(ctx context.Context, age int) (int64, error) {
	return r.UpdateWhere(ctx, []query.Assignment{query.Increment("Age", 1)}, query.Gte("Age", age))
}

func (r *MemberRepository) FindAll2(ctx context.Context) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(nil))
}

// FindAllMemberFetchJoin loads the members that have a team, together with
// the team.
func (r *MemberRepository) FindAllMemberFetchJoin(ctx context.Context) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(query.IsNotNull("Team.ID")).WithGraph("Team"))
}

// FindAllWithTeam loads every member and its team, if any.
func (r *MemberRepository) FindAllWithTeam(ctx context.Context) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(nil).WithGraph("Team"))
}

func (r *MemberRepository) FindAllWithTeamPage(ctx context.Context, page *types.PageRequest) (*types.Page[*entity.Member], error) {
	return r.FindPage(ctx, query.New(nil).WithGraph("Team"), page)
}

func (r *MemberRepository) FindAllMemberEntityGraph(ctx context.Context) ([]*entity.Member, error) {
	return r.FindAllWithTeam(ctx)
}

func (r *MemberRepository) FindEntityGraphByUserName(ctx context.Context, userName string) ([]*entity.Member, error) {
	q, err := r.entityGraphByUserName.Bind(userName)
	if err != nil {
		return nil, err
	}
	return r.FindList(ctx, q.WithGraph("Team"))
}

// FindReadOnlyByUserName returns a member whose changes are never written
// back by a flush.
func (r *MemberRepository) FindReadOnlyByUserName(ctx context.Context, userName string) (*entity.Member, error) {
	q, err := r.readOnlyByUserName.Bind(userName)
	if err != nil {
		return nil, err
	}
	return r.FindSingle(ctx, q.AsReadOnly())
}

func (r *MemberRepository) FindLockByUserName(ctx context.Context, userName string) (*entity.Member, error) {
	q, err := r.lockByUserName.Bind(userName)
	if err != nil {
		return nil, err
	}
	return r.FindSingle(ctx, q.WithLock(types.LockPessimisticWrite))
}

// FindByTeamID is the reverse side of the member to team association.
func (r *MemberRepository) FindByTeamID(ctx context.Context, teamID int64) ([]*entity.Member, error) {
	return r.FindList(ctx, query.New(query.Eq("TeamID", teamID)))
}

// FindByTeamName lists the members of the named team, oldest first.
func (r *MemberRepository) FindByTeamName(ctx context.Context, teamName string) ([]*entity.Member, error) {
	return r.FindBy(ctx, r.byTeamName, teamName)
}

func (r *MemberRepository) FindTop3ByAge(ctx context.Context) ([]*entity.Member, error) {
	return r.FindBy(ctx, r.top3ByAge)
}

func (r *MemberRepository) CountByAge(ctx context.Context, age int) (int, error) {
	return r.CountBy(ctx, r.countByAge, age)
}

func (r *MemberRepository) ExistsByUserName(ctx context.Context, userName string) (bool, error) {
	return r.ExistsBy(ctx, r.existsByUserName, userName)
}

func (r *MemberRepository) DeleteByUserName(ctx context.Context, userName string) (int, error) {
	return r.DeleteBy(ctx, r.deleteByUserName, userName)
}

// FindProjectionsByUserName runs the user name query with a caller supplied
// projection.
func FindProjectionsByUserName[V any](ctx context.Context, r *MemberRepository, userName string, shape *projection.Shape[V]) ([]V, error) {
	return Project[entity.Member](ctx, r, query.New(query.Eq("UserName", userName)), shape)
}
