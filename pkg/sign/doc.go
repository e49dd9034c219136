// Package sign provides the fixed-size key and signature values used by the
// node protocol and an ed25519 Signer.
//
// Public keys and signatures are plain byte arrays; their text form is base58.
// Both types implement encoding.TextMarshaler, so they can be used directly in
// JSON request and response structs.
//
// Usage
//
//	kp, err := sign.ParseKeyPair(os.Getenv("SOLRPC_PRIVATE_KEY"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sig, err := kp.Sign(message)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(kp.PublicKey(), sig)
//
// Key generation and storage are left to the caller.
package sign
