/*
Package model defines the database instance data model shared by the lifecycle
manager, the metadata store and the engine adapters, as well as the error
taxonomy.

An [Instance] is the logical unit: a single-container database deployment. Its
ID is the sole join key between the local metadata record and the engine's
container. The engine-facing container name is derived from the display name
using [ContainerName].
*/
package model
