package entry

import "github.com/viant/gridstore/service/dao"

// HostRuntime is a registered worker node.
type HostRuntime struct {
	HostName string `json:"hostName"`
	// Reservation is the id of the context the host is reserved for, or "".
	Reservation    string `json:"reservation,omitempty"`
	TimeRegistered int64  `json:"timeRegistered"`
}

// Validate checks the host fields.
func (h *HostRuntime) Validate() error {
	if err := ValidateHostName(h.HostName); err != nil {
		return err
	}
	if h.Reservation != "" && !IsValidID(h.Reservation) {
		return dao.Invalid(EntityHostRuntime, h.HostName, "reservation", h.Reservation)
	}
	return nil
}

// Reserve sets or clears the reservation. Re-reserving for the same context
// is accepted, clearing always succeeds, and reserving a host held by a
// different context fails with dao.ErrReservationConflict. The returned
// flag reports whether the reservation changed.
func (h *HostRuntime) Reserve(contextID string) (bool, error) {
	switch {
	case contextID == h.Reservation:
		return false, nil
	case contextID == "":
		h.Reservation = ""
		return true, nil
	case h.Reservation == "":
		h.Reservation = contextID
		return true, nil
	default:
		return false, dao.NewError(dao.ErrReservationConflict, EntityHostRuntime, h.HostName,
			"reserved by %s, requested by %s", h.Reservation, contextID)
	}
}

// Clone returns a copy.
func (h *HostRuntime) Clone() *HostRuntime {
	if h == nil {
		return nil
	}
	clone := *h
	return &clone
}
