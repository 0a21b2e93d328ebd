// Copyright 2023 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package model

import (
	"sort"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// HeaderPermissions carries the capabilities of the calling user, as
// resolved by the API gateway.
const HeaderPermissions = "X-DeviceHub-Permissions"

// Permission is a capability tag
type Permission string

const (
	PermissionDevicesRead   Permission = "devices:read"
	PermissionDevicesManage Permission = "devices:manage"
	PermissionCommandsIssue Permission = "commands:issue"
)

// Permissions is a set of capability tags
type Permissions struct {
	set mapset.Set[Permission]
}

// NewPermissions returns the set of the given permissions
func NewPermissions(perms ...Permission) Permissions {
	return Permissions{set: mapset.NewSet(perms...)}
}

// ParsePermissions parses a comma separated list of capability tags
func ParsePermissions(value string) Permissions {
	perms := NewPermissions()
	for _, tag := range strings.Split(value, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			perms.set.Add(Permission(tag))
		}
	}
	return perms
}

// Has returns true if perm is part of the set
func (p Permissions) Has(perm Permission) bool {
	if p.set == nil {
		return false
	}
	return p.set.Contains(perm)
}

// Len returns the number of permissions in the set
func (p Permissions) Len() int {
	if p.set == nil {
		return 0
	}
	return p.set.Cardinality()
}

// Slice returns the permissions sorted by name
func (p Permissions) Slice() []Permission {
	if p.set == nil {
		return []Permission{}
	}
	perms := p.set.ToSlice()
	sort.Slice(perms, func(i, j int) bool {
		return perms[i] < perms[j]
	})
	return perms
}

func (p Permissions) String() string {
	perms := p.Slice()
	tags := make([]string, len(perms))
	for i, perm := range perms {
		tags[i] = string(perm)
	}
	return strings.Join(tags, ",")
}
