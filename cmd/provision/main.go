// Command provision derives a device's Ed25519 signing key from a BIP-39
// mnemonic and writes it out as a keygen JSON file compatible with
// wallet.WithKeygenFile. It never touches the network and is meant to be
// run once, offline, before a device's key is burned into flash.
package main

import (
	"bufio"
	"crypto/ed25519"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// derivationPath is m/44'/501'/0'/0', Solana's standard BIP44 coin type
// (501) with every level hardened, following the teacher's own
// evm.deriveEthereumKey pattern but hardened all the way down since the
// resulting entropy feeds an Ed25519 seed rather than a secp256k1 scalar.
var derivationPath = []uint32{44, 501, 0, 0}

func main() {
	generate := flag.Bool("generate", false, "generate a fresh mnemonic instead of reading one from stdin")
	outPath := flag.String("out", "", "output path for the keygen JSON file (required)")
	flag.Parse()

	if *outPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -out is required")
		flag.PrintDefaults()
		os.Exit(1)
	}

	var mnemonic string
	if *generate {
		entropy, err := bip39.NewEntropy(256)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate entropy: %v\n", err)
			os.Exit(1)
		}
		mnemonic, err = bip39.NewMnemonic(entropy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to generate mnemonic: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Generated mnemonic (write this down, it will not be shown again):")
		fmt.Println(mnemonic)
	} else {
		fmt.Println("Enter mnemonic:")
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Scan()
		mnemonic = strings.TrimSpace(scanner.Text())
	}

	if !bip39.IsMnemonicValid(mnemonic) {
		fmt.Fprintln(os.Stderr, "Error: mnemonic failed BIP-39 checksum validation")
		os.Exit(1)
	}

	secret, public, err := deriveEd25519Key(mnemonic)
	if err != nil {
		fmt.Fprintf(os.Stderr, "key derivation failed: %v\n", err)
		os.Exit(1)
	}

	asInts := make([]int, len(secret))
	for i, b := range secret {
		asInts[i] = int(b)
	}
	raw, err := json.Marshal(asInts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode keygen file: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outPath, raw, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write keygen file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote keygen file to %s\n", *outPath)
	fmt.Printf("public key (32 bytes, hex): %x\n", public)
}

// deriveEd25519Key walks derivationPath as successive hardened BIP-32
// children of the mnemonic's seed, then treats the final child key's raw
// key bytes as an Ed25519 seed. It never derives a non-hardened child,
// since there is no meaningful "public derivation" for an Ed25519 seed.
func deriveEd25519Key(mnemonic string) (secret ed25519.PrivateKey, public ed25519.PublicKey, err error) {
	seed := bip39.NewSeed(mnemonic, "")

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("deriving master key: %w", err)
	}

	for _, index := range derivationPath {
		key, err = key.NewChildKey(bip32.FirstHardenedChild + index)
		if err != nil {
			return nil, nil, fmt.Errorf("deriving hardened child %d': %w", index, err)
		}
	}

	edSeed := key.Key
	if len(edSeed) != ed25519.SeedSize {
		return nil, nil, fmt.Errorf("derived key material is %d bytes, want %d", len(edSeed), ed25519.SeedSize)
	}

	secret = ed25519.NewKeyFromSeed(edSeed)
	public = secret.Public().(ed25519.PublicKey)
	return secret, public, nil
}
