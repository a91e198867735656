package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dukaanlabs/dukaan/pkg/identity"
)

var (
	identityShop    string
	identityAddress string
	identityContact string
	identityPincode string
)

// dukaan identity
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Inspect or set the cached operator identity",
}

var identityShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the identity the terminal is operating as",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()

		p, ok := identity.Cached{}.Profile()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no identity cached; requests go out anonymous")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "username:", p.Username)
		fmt.Fprintln(out, "shop:    ", p.ShopName)
		fmt.Fprintln(out, "address: ", p.FullAddress, p.Pincode)
		fmt.Fprintln(out, "contact: ", p.ContactNumber)
		return nil
	},
}

var identityUseCmd = &cobra.Command{
	Use:   "use USERNAME",
	Short: "Cache an identity for this terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()

		p := identity.Profile{
			Username:      args[0],
			ShopName:      identityShop,
			FullAddress:   identityAddress,
			ContactNumber: identityContact,
			Pincode:       identityPincode,
		}
		if err := identity.Save(p); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "operating as", p.Username)
		return nil
	},
}

var identityClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop the cached identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer boot()()

		if err := identity.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "identity cleared")
		return nil
	},
}

func init() {
	identityUseCmd.Flags().StringVar(&identityShop, "shop", "", "shop name printed on receipts")
	identityUseCmd.Flags().StringVar(&identityAddress, "address", "", "shop address")
	identityUseCmd.Flags().StringVar(&identityContact, "contact", "", "shop phone number")
	identityUseCmd.Flags().StringVar(&identityPincode, "pincode", "", "shop pincode")

	identityCmd.AddCommand(identityShowCmd)
	identityCmd.AddCommand(identityUseCmd)
	identityCmd.AddCommand(identityClearCmd)
}
