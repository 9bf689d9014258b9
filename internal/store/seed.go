package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"airdrop/pkg/platform/sentinel"
)

// UserCreator is the write path used for out-of-band provisioning.
type UserCreator interface {
	CreateUser(ctx context.Context, nu NewUser) (*User, error)
}

// DefaultSeed is the development fixture set.
func DefaultSeed() []NewUser {
	return []NewUser{
		{Address: "0xFOO", Amount: 0},
		{Address: "0xBAR", Amount: 42},
		{Address: "0xBOO", Amount: 800, TermsSigned: true, NotResident: true},
	}
}

type seedFile struct {
	Users []NewUser `yaml:"users"`
}

// LoadSeed decodes a YAML document of the form:
//
//	users:
//	  - address: 0xFOO
//	    amount: 10
//	    terms_signed: false
//	    not_resident: false
func LoadSeed(r io.Reader) ([]NewUser, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, u := range f.Users {
		if u.Address == "" {
			return nil, fmt.Errorf("seed entry %d: address is required", i)
		}
	}
	return f.Users, nil
}

// SeedResult counts what Seed did.
type SeedResult struct {
	Created int
	Skipped int
}

// Seed inserts users, skipping addresses that already exist.
func Seed(ctx context.Context, store UserCreator, users []NewUser) (SeedResult, error) {
	var res SeedResult
	for _, nu := range users {
		_, err := store.CreateUser(ctx, nu)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, sentinel.ErrConflict):
			res.Skipped++
		default:
			return res, fmt.Errorf("seed %s: %w", nu.Address, err)
		}
	}
	return res, nil
}
