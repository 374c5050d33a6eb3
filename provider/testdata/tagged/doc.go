// Package tagged declares its enum behind a build tag.
package tagged
