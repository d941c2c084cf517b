// Package jwt wraps signing and verification of fpgate app tokens.
package jwt
