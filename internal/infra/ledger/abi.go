package ledger

// forensicChainABI covers the subset of the ForensicChain contract this
// service calls. keyHash commits to the unwrapped file key without revealing
// it on-chain.
const forensicChainABI = `[
  {
    "type": "function",
    "name": "submitCaseEvidence",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "caseId", "type": "string"},
      {"name": "evidenceId", "type": "string"},
      {"name": "cid", "type": "string"},
      {"name": "hashOriginal", "type": "string"},
      {"name": "keyHash", "type": "string"},
      {"name": "evidenceType", "type": "uint8"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "confirmEvidence",
    "stateMutability": "nonpayable",
    "inputs": [
      {"name": "caseId", "type": "string"},
      {"name": "index", "type": "uint256"}
    ],
    "outputs": []
  },
  {
    "type": "function",
    "name": "getEvidenceById",
    "stateMutability": "view",
    "inputs": [
      {"name": "caseId", "type": "string"},
      {"name": "evidenceId", "type": "string"}
    ],
    "outputs": [
      {"name": "cid", "type": "string"},
      {"name": "hashOriginal", "type": "string"},
      {"name": "keyHash", "type": "string"},
      {"name": "evidenceType", "type": "uint8"},
      {"name": "confirmed", "type": "bool"}
    ]
  },
  {
    "type": "function",
    "name": "evidenceCount",
    "stateMutability": "view",
    "inputs": [{"name": "caseId", "type": "string"}],
    "outputs": [{"name": "", "type": "uint256"}]
  }
]`
