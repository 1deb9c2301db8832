/*
Package imgextract loads images, resizes them to a requested width while keeping the aspect ratio
and returns their pixels as tightly packed R,G,B,A bytes. It can also compute a single channel
ridge strength map, the edge magnitude obtained from a blurred grayscale copy of the image with
horizontal and vertical Sobel derivatives.

The package provides a command line interface. To check the supported commands type:

	$ imgextract --help

A simple example of using the API:

	package main

	import (
		"fmt"
		"github.com/toposonics/imgextract"
	)

	func main() {
		var dims imgextract.Dimensions
		pix, err := imgextract.ExtractFromFile("image.jpg", 640, &dims)
		if err != nil {
			fmt.Printf("Error extracting image: %s", err.Error())
			return
		}
		fmt.Println(dims[0], dims[1], len(pix))
	}

The pixel work is done by an Engine. The default one is written in pure Go; building with the
gocv tag switches to an OpenCV backed engine.
*/
package imgextract
