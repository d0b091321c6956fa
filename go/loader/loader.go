package loader

// LoaderBase holds what every program loader ends up with.
type LoaderBase struct {
	path  string
	entry uint64
	words []uint32
}

func (l *LoaderBase) Path() string {
	return l.path
}

func (l *LoaderBase) Entry() uint64 {
	return l.entry
}

func (l *LoaderBase) Words() []uint32 {
	return l.words
}
