/*
Package matcher provides Gomega matchers for database instances.
*/
package matcher
