package bad

// Not an interface.
//
//apibind:interface
type NotAnInterface struct{}

//apibind:interface stray_argument
type WithArg interface {
	Op()
}

//apibind:implement
var wrong = 42
