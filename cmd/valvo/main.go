// Valvo - Compliance Check Engine
// Collect. Evaluate. Report.
package main

func main() {
	Execute()
}
