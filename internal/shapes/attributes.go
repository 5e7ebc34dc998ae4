package shapes

// solid line stipple pattern
const SolidStipplePattern = 0xffff

// Rendering attributes of a surface shape. Only the fields that affect which geometry is produced and how the
// outline is dashed are kept here; colors and textures belong to the renderer.
type Attributes struct {
	DrawInterior          bool    // if true the interior geometry is filled
	DrawOutline           bool    // if true the outline geometry is stroked
	OutlineWidth          float64 // outline width in pixels
	OutlineStipplePattern uint16  // 16 bit pattern, each set bit draws one run of OutlineStippleFactor pixels
	OutlineStippleFactor  int     // pixel length of each bit of the stipple pattern, 0 disables stippling
}

func DefaultAttributes() *Attributes {
	return &Attributes{
		DrawInterior:          true,
		DrawOutline:           true,
		OutlineWidth:          1,
		OutlineStipplePattern: SolidStipplePattern,
		OutlineStippleFactor:  0,
	}
}

func (a *Attributes) Copy() *Attributes {
	c := *a
	return &c
}

// Returns true if the outline must be drawn with a dash pattern
func (a *Attributes) IsStippled() bool {
	return a.OutlineStipplePattern != SolidStipplePattern && a.OutlineStippleFactor > 0
}

// Dash array of the outline, nil for a solid line
func (a *Attributes) OutlineDash() []float64 {
	if !a.IsStippled() {
		return nil
	}
	return LineDash(a.OutlineStipplePattern, float64(a.OutlineStippleFactor))
}

// Converts a 16 bit stipple pattern, read from the least significant bit, into alternating on/off run lengths
// scaled by spacing. The result always has an even length, the first entry is an "on" run and may be zero.
func LineDash(pattern uint16, spacing float64) []float64 {
	if pattern == SolidStipplePattern {
		return nil
	}

	var lineDash []float64
	isOn := true
	runLength := 0

	for i := 0; i < 16; i++ {
		bitSet := pattern&1 == 1
		if bitSet == isOn {
			runLength++
		} else {
			lineDash = append(lineDash, spacing*float64(runLength))
			runLength = 1
			isOn = !isOn
		}
		pattern >>= 1
	}

	if runLength > 0 {
		lineDash = append(lineDash, spacing*float64(runLength))
	}

	if len(lineDash)%2 == 1 {
		lineDash = append(lineDash, 0)
	}

	return lineDash
}
