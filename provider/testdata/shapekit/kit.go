// Package kit lives in a directory whose name differs from the package name.
package kit

type Pen struct {
	Width int
}
