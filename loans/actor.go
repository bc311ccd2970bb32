package loans

import "github.com/yourusername/loantrack/models"

// Actor identifies who is performing a mutation. It is passed explicitly
// into every engine call instead of being read from ambient session state.
type Actor struct {
	ID   uint
	Role string
}

// IsSuperAdmin reports whether the actor may perform elevated operations,
// such as deleting a settled loan.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}
