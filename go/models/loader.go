package models

// Loader supplies a program image: instruction words placed contiguously from Entry.
type Loader interface {
	Path() string
	Entry() uint64
	Words() []uint32
}
