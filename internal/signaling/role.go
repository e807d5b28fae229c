package signaling

// Role is the set of roles admissible to a consultation room. It is a
// deliberately closed enumeration: the platform's identity tokens carry a
// wider role set (ADMIN, SUPER_ADMIN, ...), but only a doctor and a patient
// may ever occupy a room.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// RoleFromUserRole maps an identity-token role onto a signaling Role. The
// mapping is total: every role outside DOCTOR/PATIENT yields ok=false rather
// than falling through to a default.
func RoleFromUserRole(userRole string) (Role, bool) {
	switch userRole {
	case "DOCTOR":
		return RoleDoctor, true
	case "PATIENT":
		return RolePatient, true
	default:
		return "", false
	}
}
