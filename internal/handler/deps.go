package handler

import (
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"duvidha/internal/app/complaint"
	"duvidha/internal/app/user"
	"duvidha/internal/configs"
	"duvidha/internal/pkg/logx"
)

// AppDeps carries everything the handlers need.
type AppDeps struct {
	Config     *configs.AppConfig
	Users      user.Repository
	Complaints complaint.Repository

	// BcryptCost defaults to bcrypt.DefaultCost when zero.
	BcryptCost int

	// Now is the token issuance clock; time.Now when nil.
	Now func() time.Time

	dummyOnce sync.Once
	dummyHash []byte
}

func (d *AppDeps) bcryptCost() int {
	if d.BcryptCost == 0 {
		return bcrypt.DefaultCost
	}
	return d.BcryptCost
}

func (d *AppDeps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

// dummyPasswordHash is compared against on signin for unknown emails so the
// response time does not reveal whether an account exists. It uses the same
// cost as stored hashes.
func (d *AppDeps) dummyPasswordHash() []byte {
	d.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("duvidha-no-such-account"), d.bcryptCost())
		if err != nil {
			logx.Error(err, "generating dummy password hash failed")
			return
		}
		d.dummyHash = hash
	})
	return d.dummyHash
}
