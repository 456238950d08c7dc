// Command buildserve serves the frontend build output over HTTP.
package main

import "github.com/f4ah6o/buildserve-go/internal/cli"

func main() {
	cli.Execute()
}
