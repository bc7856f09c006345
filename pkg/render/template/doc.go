// Package template defines the template rendering seam used for the
// auxiliary mail and message templates that accompany compiled markup forms.
package template
