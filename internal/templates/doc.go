// Package templates holds the note head templates used for symbol matching.
//
// A template is a small reference image tagged with a rhythmic length. The
// set of templates is described by a catalog of asset names and is loaded
// through an AssetProvider, which may read from the images embedded in the
// binary, from a directory, or from an Azure Storage container.
//
// Templates are drawn at an arbitrary size. Before matching, each one is
// scaled so its height equals the stave line spacing of the page being
// scanned, then binarized with the same preprocessor as the page:
//
//	lib := templates.NewLibrary(templates.NewEmbeddedProvider(), nil)
//	all, err := lib.LoadAll(ctx)
//	for _, t := range all {
//	    prepared, err := t.Prepare(stave.Spacing, imaging.DefaultPreprocessOptions())
//	    ...
//	}
package templates
