package artifact

import "github.com/ofarch/relpack/internal/config"

// Installer is the final distributable produced by a platform finalizer.
type Installer struct {
	// Path is where the artifact landed.
	Path string
	// Platform is the pipeline that produced it.
	Platform config.Platform
	// Name is the version-stamped artifact filename.
	Name string
	// Signed reports whether the artifact was code-signed.
	Signed bool
}
