/*
Package rcon implements the client side of the Source RCON protocol as used
by the ARK dedicated server: little-endian size-prefixed packets over TCP,
a password handshake, and request/response correlation through client-chosen
packet IDs.

The server splits long command responses across several packets without any
continuation flag. Session.Execute works around this by always sending an
empty probe command right behind the real one and collecting response bodies
until the probe's ID echoes back.
*/
package rcon
