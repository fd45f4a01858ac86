package main

import "github.com/redactable/redactable/cmd/redactable"

func main() { redactable.Execute() }
