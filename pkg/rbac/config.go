package rbac

import (
	"errors"
	"fmt"
)

// Config is the deployment's role and permission catalogue.
type Config struct {
	Roles       []RoleDefinition
	Permissions []Permission
}

// Validate rejects empty, duplicate or dangling entries. Role levels must
// be unique because assignment authority compares them.
func (c *Config) Validate() error {
	catalogue, err := c.permissionCatalogue()
	if err != nil {
		return err
	}
	return c.checkRoles(catalogue)
}

func (c *Config) permissionCatalogue() (map[Permission]struct{}, error) {
	if len(c.Permissions) == 0 {
		return nil, errors.New(errConfigPermissionsEmpty)
	}
	catalogue := make(map[Permission]struct{}, len(c.Permissions))
	for _, p := range c.Permissions {
		if p == "" {
			return nil, errors.New(errConfigPermissionEmpty)
		}
		if _, dup := catalogue[p]; dup {
			return nil, fmt.Errorf(errConfigDuplicatePermissionFmt, p)
		}
		catalogue[p] = struct{}{}
	}
	return catalogue, nil
}

func (c *Config) checkRoles(catalogue map[Permission]struct{}) error {
	if len(c.Roles) == 0 {
		return errors.New(errConfigRolesEmpty)
	}
	byName := make(map[Role]struct{}, len(c.Roles))
	byLevel := make(map[int]Role, len(c.Roles))
	for _, rd := range c.Roles {
		if rd.Name == "" {
			return errors.New(errConfigRoleNameEmpty)
		}
		if _, dup := byName[rd.Name]; dup {
			return fmt.Errorf(errConfigDuplicateRoleNameFmt, rd.Name)
		}
		if other, dup := byLevel[rd.Level]; dup {
			return fmt.Errorf(errConfigDuplicateRoleLevelFmt, rd.Level, other, rd.Name)
		}
		for _, p := range rd.Permissions {
			if _, ok := catalogue[p]; !ok {
				return fmt.Errorf(errConfigRoleUnknownPermissionFmt, rd.Name, p)
			}
		}
		byName[rd.Name] = struct{}{}
		byLevel[rd.Level] = rd.Name
	}
	return nil
}
