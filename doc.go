/*
Package eyeson locates the two eyes of a stylized (anime, cartoon) portrait
and derives an eye-centered square crop from them.

The detector scores every pixel by how much it looks like a bright, saturated,
high-contrast eye interior, grows connected regions out of the best scores and
picks the most plausible left/right pair. When no pair is found the Processor
falls back to a pigo face cascade, if one is loaded, and then to a fixed crop.

The package provides a command line interface. To check the supported flags type:

	$ eyeson --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/eyeson-art/eyeson"
	)

	func main() {
		p := eyeson.NewProcessor()

		res, err := p.Process(in, out)
		if err != nil {
			fmt.Printf("Error cropping image: %s", err.Error())
		}
		fmt.Println(res.Source, res.Crop)
	}
*/
package eyeson
