package main

import "fmt"

// ConflictingFlagsError indicates two flags that cannot be combined.
type ConflictingFlagsError struct {
	First  string
	Second string
}

func (e ConflictingFlagsError) Error() string {
	return fmt.Sprintf("--%s and --%s cannot be used together", e.First, e.Second)
}
