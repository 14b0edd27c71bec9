// Package caregiver gates editing and settings behind a PIN.
package caregiver
