package layout

// pack places modules first-fit in order: left to right within a row, top to
// bottom across rows. Raises an OverflowError when the case cannot hold every
// module.
func pack(ordered []moduleProfile, c Case, phil Philosophy) ([]Placement, error) {
	placements := make([]Placement, 0, len(ordered))
	row, x := 0, 0
	for _, m := range ordered {
		if m.widthHP > c.RowWidthHP {
			return nil, &OverflowError{Module: m.instance, WidthHP: m.widthHP, Case: c, Philosophy: phil}
		}
		if x+m.widthHP > c.RowWidthHP {
			row++
			x = 0
		}
		if row >= c.Rows {
			return nil, &OverflowError{Module: m.instance, WidthHP: m.widthHP, Case: c, Philosophy: phil}
		}
		placements = append(placements, Placement{
			Module:    m.instance,
			Row:       row,
			XOffsetHP: x,
			WidthHP:   m.widthHP,
		})
		x += m.widthHP
	}
	return placements, nil
}
