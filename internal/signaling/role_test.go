package signaling

import "testing"

func TestRoleFromUserRole(t *testing.T) {
	tests := []struct {
		userRole string
		want     Role
		ok       bool
	}{
		{"DOCTOR", RoleDoctor, true},
		{"PATIENT", RolePatient, true},
		{"ADMIN", "", false},
		{"SUPER_ADMIN", "", false},
		{"doctor", "", false}, // identity roles are upper-case
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.userRole, func(t *testing.T) {
			got, ok := RoleFromUserRole(tt.userRole)
			if ok != tt.ok {
				t.Fatalf("RoleFromUserRole(%q) ok = %v, want %v", tt.userRole, ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("RoleFromUserRole(%q) = %q, want %q", tt.userRole, got, tt.want)
			}
		})
	}
}
