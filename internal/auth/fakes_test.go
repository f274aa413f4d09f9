package auth_test

import (
	"context"

	"github.com/frahmantamala/elementar/internal/auth"
)

type fakeRepo struct {
	identities  map[int64]*auth.IdentityRecord
	memberships []auth.MembershipRecord
	companies   map[int64]bool // company id -> active
	roles       map[int64]*auth.RoleRecord
	nextID      int64
	err         error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		identities: map[int64]*auth.IdentityRecord{},
		companies:  map[int64]bool{},
		roles:      map[int64]*auth.RoleRecord{},
		nextID:     100,
	}
}

func (f *fakeRepo) GetIdentityByID(_ context.Context, id int64) (*auth.IdentityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	rec, ok := f.identities[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRepo) GetIdentityByEmail(_ context.Context, email string) (*auth.IdentityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, rec := range f.identities {
		if rec.Email == email {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CreateIdentity(_ context.Context, rec *auth.IdentityRecord) error {
	f.nextID++
	rec.ID = f.nextID
	cp := *rec
	f.identities[rec.ID] = &cp
	return nil
}

func (f *fakeRepo) FindActiveMembership(_ context.Context, userID, companyID int64) (*auth.MembershipRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range f.memberships {
		if m.UserID == userID && m.CompanyID == companyID && m.IsActive && f.companies[companyID] {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) CountMemberships(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, m := range f.memberships {
		if m.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListMemberships(_ context.Context, userID int64) ([]auth.MembershipRecord, error) {
	out := []auth.MembershipRecord{}
	for _, m := range f.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetRole(_ context.Context, roleID int64) (*auth.RoleRecord, error) {
	role, ok := f.roles[roleID]
	if !ok {
		return nil, nil
	}
	cp := *role
	return &cp, nil
}

func (f *fakeRepo) GetRoleByName(_ context.Context, name string) (*auth.RoleRecord, error) {
	for _, role := range f.roles {
		if role.Name == name {
			cp := *role
			return &cp, nil
		}
	}
	return nil, nil
}

func int64Ptr(v int64) *int64 { return &v }
