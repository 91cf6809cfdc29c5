package navigation

// Key is a keyboard event relevant to the suggestion list.
type Key int

const (
	KeyOther Key = iota
	KeyUp
	KeyDown
	KeyEnter
)

var keyNames = map[string]Key{
	"ArrowUp":   KeyUp,
	"Up":        KeyUp,
	"ArrowDown": KeyDown,
	"Down":      KeyDown,
	"Enter":     KeyEnter,
}

// ParseKey maps a DOM KeyboardEvent.key value to a Key. Unknown names are
// KeyOther.
func ParseKey(name string) Key {
	if k, ok := keyNames[name]; ok {
		return k
	}
	return KeyOther
}

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "ArrowUp"
	case KeyDown:
		return "ArrowDown"
	case KeyEnter:
		return "Enter"
	default:
		return "other"
	}
}
