package accounts

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/elephant-xyz/mvl-monitoring/pkg/types"
)

// flexString accepts any YAML scalar as a string. Account IDs are 12-digit
// numbers that YAML would otherwise resolve as !!int.
type flexString string

// UnmarshalYAML implements yaml.Unmarshaler
func (s *flexString) UnmarshalYAML(value *yaml.Node) error {
	*s = flexString(value.Value)
	return nil
}

// entry mirrors one item of the accounts file:
//
//   - Account ID: 123456789012
//     username: ...
//     password: ...
//     aws_access_key_id: AKIA...
//     aws_secret_access_key: ...
type entry struct {
	AccountID       flexString `yaml:"Account ID" validate:"required"`
	Username        string     `yaml:"username"`
	Password        string     `yaml:"password"`
	AccessKeyID     string     `yaml:"aws_access_key_id" validate:"required"`
	SecretAccessKey string     `yaml:"aws_secret_access_key" validate:"required"`
}

// Loader loads account credentials from a YAML file
type Loader struct {
	path     string
	validate *validator.Validate
}

// NewLoader creates a new account loader
func NewLoader(path string) *Loader {
	return &Loader{
		path:     path,
		validate: validator.New(),
	}
}

// Load reads and validates the accounts file. Entries that fail validation
// are skipped with a warning so one malformed entry cannot sink the run;
// an error is returned only when the file is unreadable, unparseable, or
// contains no usable entries at all.
func (l *Loader) Load() ([]types.Account, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read accounts file %s: %w", l.path, err)
	}

	var entries []entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse accounts YAML %s: %w", l.path, err)
	}

	accounts := make([]types.Account, 0, len(entries))
	for i, e := range entries {
		if err := l.validate.Struct(e); err != nil {
			log.Printf("WARN skipping accounts entry %d (account %q): %v", i, e.AccountID, err)
			continue
		}

		accounts = append(accounts, types.Account{
			AccountID:       string(e.AccountID),
			AccessKeyID:     e.AccessKeyID,
			SecretAccessKey: e.SecretAccessKey,
			Username:        e.Username,
			Password:        e.Password,
		})
	}

	if len(accounts) == 0 {
		return nil, fmt.Errorf("no valid accounts found in %s", l.path)
	}

	return accounts, nil
}

// Load is a convenience wrapper around NewLoader(path).Load()
func Load(path string) ([]types.Account, error) {
	return NewLoader(path).Load()
}
