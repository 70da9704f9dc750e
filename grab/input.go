package grab

// Input is the button state seen by one tick
type Input struct {
	PrimaryHeld          bool
	PrimaryJustPressed   bool
	SecondaryJustPressed bool
}

// Buttons derives edge-triggered Input from raw button levels
type Buttons struct {
	primary   bool
	secondary bool
}

// Sample records the current levels and reports which buttons went down since the previous sample
func (b *Buttons) Sample(primary, secondary bool) Input {
	in := Input{
		PrimaryHeld:          primary,
		PrimaryJustPressed:   primary && !b.primary,
		SecondaryJustPressed: secondary && !b.secondary,
	}
	b.primary = primary
	b.secondary = secondary

	return in
}
