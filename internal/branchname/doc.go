// Package branchname derives pull-request titles from topic branch names.
package branchname
