package wire

// record is the computed layout of a structure, with the offset of each field.
type record struct {
	Layout
	offsets []uint32
	fields  []Layout
}

func structOf(fields ...Layout) record {
	r := record{
		Layout: Layout{Align: 1},
		fields: fields,
	}
	for _, f := range fields {
		offset := alignUp(r.Size, f.Align)
		r.offsets = append(r.offsets, offset)
		r.Size = offset + f.Size
		if f.Align > r.Align {
			r.Align = f.Align
		}
	}
	r.Size = alignUp(r.Size, r.Align)
	return r
}

func (r *record) field(b []byte, i int) []byte {
	offset := r.offsets[i]
	return b[offset : offset+r.fields[i].Size]
}

// variant is the computed layout of a tagged union. The tag is stored first,
// and the payload of every case starts at the same contents offset.
type variant struct {
	Layout
	tag      Layout
	contents uint32
	cases    []Layout
}

func unionOf(tag Layout, cases ...Layout) variant {
	v := variant{
		tag:   tag,
		cases: cases,
	}
	align, size := uint32(1), uint32(0)
	for _, c := range cases {
		if c.Align > align {
			align = c.Align
		}
		if c.Size > size {
			size = c.Size
		}
	}
	v.contents = alignUp(tag.Size, align)
	if tag.Align > align {
		align = tag.Align
	}
	v.Layout = Layout{
		Size:  alignUp(v.contents+size, align),
		Align: align,
	}
	return v
}

func (v *variant) known(tag uint64) bool {
	return tag < uint64(len(v.cases))
}

func (v *variant) header(b []byte) []byte {
	return b[:v.tag.Size]
}

func (v *variant) payload(b []byte, tag uint64) []byte {
	return b[v.contents : v.contents+v.cases[tag].Size]
}
