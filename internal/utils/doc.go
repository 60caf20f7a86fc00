// Package utils builds the logger and loads the layered configuration shared by gpr's commands.
package utils
