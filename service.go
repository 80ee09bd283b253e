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

package datarepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/datarepo/database"
	"github.com/tomoncle/datarepo/entity"
	"github.com/tomoncle/datarepo/repository"
)

// Services bundles the manager and the entity repositories sharing it.
type Services struct {
	Manager *repository.Manager
	Members *repository.MemberRepository
	Teams   *repository.TeamRepository
	Items   *repository.ItemRepository
}

// NewServices builds the repositories over db. A query method that cannot be
// registered fails here, before any request is served.
func NewServices(db *bun.DB, opts ...repository.Option) (*Services, error) {
	m := repository.NewManager(db, opts...)
	members, err := repository.NewMemberRepository(m)
	if err != nil {
		return nil, err
	}
	teams, err := repository.NewTeamRepository(m)
	if err != nil {
		return nil, err
	}
	items, err := repository.NewItemRepository(m)
	if err != nil {
		return nil, err
	}
	return &Services{Manager: m, Members: members, Teams: teams, Items: items}, nil
}

var (
	defaultOnce     sync.Once
	defaultServices *Services
	defaultErr      error
)

// Default returns the services over the global database connection. It must
// be called after database.InitDB.
func Default(opts ...repository.Option) (*Services, error) {
	defaultOnce.Do(func() {
		db := database.GetDB()
		if db == nil {
			defaultErr = fmt.Errorf("database is not initialized")
			return
		}
		defaultServices, defaultErr = NewServices(db, opts...)
	})
	return defaultServices, defaultErr
}

// SeedMembers saves n members named user0..user{n-1} aged 10 upwards in one
// transaction. It does nothing when members already exist and returns the
// number of members created.
func (s *Services) SeedMembers(ctx context.Context, n int) (int, error) {
	count, err := s.Members.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}
	if count > 0 || n <= 0 {
		return 0, nil
	}

	members := make([]*entity.Member, n)
	for i := range members {
		members[i] = entity.NewMember(fmt.Sprintf("user%d", i), i+10, nil)
	}
	err = s.Manager.RunInTx(ctx, nil, func(ctx context.Context) error {
		_, err := s.Members.SaveAll(ctx, members)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to seed members: %w", err)
	}
	return n, nil
}
