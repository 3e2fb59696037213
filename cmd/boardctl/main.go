// Command boardctl is the operator CLI of the staff assignment board.
package main

func main() {
	Execute()
}
