package dlmm

import solanago "github.com/gagliardetto/solana-go"

// ProgramID is the DLMM (lb_clmm) program address.
var ProgramID = solanago.MustPublicKeyFromBase58("LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9t1EutrqJ")
