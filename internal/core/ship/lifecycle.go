package ship

// Change is one raw field assignment, normalized by the caller before it is
// stored.
type Change struct {
	Field Field
	Raw   string
}

// StartRepairs moves a ship into drydock.
func StartRepairs(drydock string) []Change {
	return []Change{
		{Field: FieldLocation, Raw: drydock},
		{Field: FieldStatus, Raw: string(StatusRepairing)},
	}
}

// FinishRepairs parks a repaired ship and resets its damage.
func FinishRepairs(parkedAt, notes string) []Change {
	return []Change{
		{Field: FieldLocation, Raw: parkedAt},
		{Field: FieldDamage, Raw: "0"},
		{Field: FieldNotes, Raw: notes},
		{Field: FieldStatus, Raw: string(StatusParked)},
	}
}

// Depart deploys a ship.
func Depart() []Change {
	return []Change{{Field: FieldStatus, Raw: string(StatusDeployed)}}
}

// ReturnToPort parks a deployed ship, recording where it is and the damage
// it came back with.
func ReturnToPort(where, damage, notes string) []Change {
	return []Change{
		{Field: FieldLocation, Raw: where},
		{Field: FieldDamage, Raw: damage},
		{Field: FieldNotes, Raw: notes},
		{Field: FieldStatus, Raw: string(StatusParked)},
	}
}

// MarkDead records the loss of a ship.
func MarkDead() []Change {
	return []Change{{Field: FieldStatus, Raw: string(StatusDead)}}
}
