// Command droneops-dispatch runs the drone delivery dispatch service.
package main

func main() {
	Execute()
}
