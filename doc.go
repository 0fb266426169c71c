// Package docseal signs, verifies, encrypts and decrypts JSON documents
// with JOSE structures.
//
// Signatures are JWS compact tokens made with the local holder key.
// Encryption produces a multi-recipient JWE in JSON serialization whose
// recipients come from the document itself: the holder key plus every key
// id listed in the document's "access" member. Post-quantum keys are
// supported through ML-DSA-65 signatures and ML-KEM-768 key wrapping.
//
// Basic usage:
//
//	registry, err := docseal.NewKeyRegistry(docseal.Config{JWKS: jwks})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc := docseal.New(registry)
//
//	// Encrypt for the holder and the keys named in "access"
//	env, err := svc.Encrypt(docseal.Document{"access": []any{"peer"}, "value": "x"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := svc.Decrypt(env)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Signing and verification never fail loudly: an unsigned payload or a
// missing _metadata.verified member reports what happened. Encryption and
// decryption return errors that match the sentinels in this package with
// errors.Is.
package docseal
