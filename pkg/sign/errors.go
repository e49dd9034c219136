package sign

import "fmt"

var (
	ErrInvalidKey = fmt.Errorf("invalid key material")
)
