package view

// Popover is either closed (zero value) or open on one id.
type Popover struct {
	ID string
}

func (p Popover) IsOpen() bool { return p.ID != "" }

func (p Popover) IsOpenOn(id string) bool { return p.ID != "" && p.ID == id }

// Toggle closes p when id is already open, otherwise opens id.
func (p Popover) Toggle(id string) Popover {
	if id == "" || p.ID == id {
		return Popover{}
	}
	return Popover{ID: id}
}

// Click keeps the popover only when the click landed inside its own region.
func (p Popover) Click(region string) Popover {
	if !p.IsOpen() || region == p.ID {
		return p
	}
	return Popover{}
}
