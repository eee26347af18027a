/*
Package hub queries the Docker Hub for the available tags of the official
database images, and sorts and categorizes them for presentation.
*/
package hub
