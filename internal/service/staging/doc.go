// Package staging assembles the isolated tree that holds exactly the files
// the shipped product needs. Staging is destructive to its destination: prior
// contents are destroyed every run so a differently-configured previous run
// can never leak files into the next installer.
package staging
