package authz

import "fmt"

// RoleSeed 内置角色定义
type RoleSeed struct {
	Role     string
	Inherits []string
	Policies []Policy
	// Immutable 为 true 时禁止在后台修改
	Immutable bool
}

// BuiltinRoleSeeds 内置角色种子，覆盖平台运营的常见分工
var BuiltinRoleSeeds = []RoleSeed{
	{
		Role:      "readonly_auditor",
		Immutable: true,
		Policies: []Policy{
			{Object: "/admin/*", Action: "GET"},
		},
	},
	{
		Role: "operations",
		Policies: []Policy{
			{Object: "/admin/activities", Action: "*"},
			{Object: "/admin/activities/*", Action: "*"},
			{Object: "/admin/itineraries", Action: "*"},
			{Object: "/admin/itineraries/*", Action: "*"},
			{Object: "/admin/products", Action: "*"},
			{Object: "/admin/products/*", Action: "*"},
			{Object: "/admin/promo-codes", Action: "*"},
			{Object: "/admin/promo-codes/*", Action: "*"},
		},
	},
	{
		Role: "support",
		Policies: []Policy{
			{Object: "/admin/bookings", Action: "GET"},
			{Object: "/admin/bookings/*", Action: "GET"},
			{Object: "/admin/complaints", Action: "GET"},
			{Object: "/admin/complaints/*", Action: "*"},
			{Object: "/admin/notifications", Action: "*"},
			{Object: "/admin/users", Action: "GET"},
			{Object: "/admin/users/*", Action: "*"},
		},
	},
	{
		Role: "finance",
		Policies: []Policy{
			{Object: "/admin/payments", Action: "GET"},
			{Object: "/admin/payments/*", Action: "*"},
			{Object: "/admin/wallets", Action: "GET"},
			{Object: "/admin/wallets/*", Action: "*"},
			{Object: "/admin/bookings", Action: "GET"},
			{Object: "/admin/bookings/*", Action: "GET"},
		},
	},
}

// BootstrapBuiltinRoles 初始化内置角色与策略，幂等可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}
	for _, seed := range BuiltinRoleSeeds {
		role, err := s.EnsureRole(seed.Role)
		if err != nil {
			return fmt.Errorf("ensure builtin role %s failed: %w", seed.Role, err)
		}
		for _, parent := range seed.Inherits {
			parentRole, err := s.EnsureRole(parent)
			if err != nil {
				return fmt.Errorf("ensure parent role %s failed: %w", parent, err)
			}
			if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole); err != nil {
				return fmt.Errorf("link role %s to %s failed: %w", role, parent, err)
			}
		}
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("grant builtin policy for %s failed: %w", role, err)
			}
		}
	}
	return nil
}
