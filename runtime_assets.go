package formplugin

import (
	"io/fs"

	"github.com/goliatone/go-formplugin/pkg/renderers/vanilla"
)

// RuntimeAssetsFS exposes the page stylesheet and runtime script.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formplugin.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
