// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package storage keeps uploaded progress photos on local disk.

Uploading is a three-step flow:

 1. The client asks for an upload URL. SignUpload returns a relative URL
    carrying an expiry and an HMAC signature over the object path, valid
    for 15 minutes.
 2. The client PUTs the file body to that URL. The handler checks
    VerifyUpload and calls Put, which enforces the size limit.
 3. The client sets permissions on the object and receives its display
    path (/files/<objectPath>), which is what PhotoProgress.photoUrl stores.

Object paths are slash separated and relative to the upload directory.
Paths that escape the directory or contain dot-prefixed segments are
rejected with ErrInvalidPath.
*/
package storage
