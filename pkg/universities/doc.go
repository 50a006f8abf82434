// Package universities provides a client for the public university directory
// at universities.hipolabs.com.
package universities
