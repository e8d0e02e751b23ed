//go:build tools

//go:generate go run github.com/vektra/mockery/v2

package tools

import (
	_ "github.com/vektra/mockery/v2"
)
