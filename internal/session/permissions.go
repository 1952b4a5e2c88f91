package session

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed permissions.yml
var defaultPermissions []byte

// Permissions maps role -> []permission
type Permissions map[string][]string

type permissionsFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPermissions reads a permissions.yml file. An empty path loads the
// built-in file.
func LoadPermissions(path string) (Permissions, error) {
	b := defaultPermissions
	if path != "" {
		var err error
		if b, err = os.ReadFile(path); err != nil {
			return nil, err
		}
	}
	return ParsePermissions(b)
}

func ParsePermissions(b []byte) (Permissions, error) {
	var pf permissionsFile
	if err := yaml.Unmarshal(b, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse permissions: %w", err)
	}
	return Permissions(pf.Roles), nil
}

// Allows reports whether role holds permission. Role names are matched
// case-insensitively.
func (p Permissions) Allows(role Role, permission string) bool {
	list, ok := p[string(role)]
	if !ok {
		list = p[strings.ToUpper(string(role))]
	}
	for _, granted := range list {
		if granted == permission {
			return true
		}
	}
	return false
}
