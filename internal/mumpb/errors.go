package mumpb

import "fmt"

func errNotWireMessage(v interface{}) error {
	return fmt.Errorf("mumpb: %T does not implement wireMessage", v)
}
