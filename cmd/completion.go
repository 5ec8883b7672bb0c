package cmd

import (
	"fmt"
	"os"
)

// Completion outputs shell completion scripts
func Completion(shell string) {
	switch shell {
	case "bash":
		fmt.Print(bashCompletion)
	case "zsh":
		fmt.Print(zshCompletion)
	case "fish":
		fmt.Print(fishCompletion)
	default:
		fmt.Fprintf(os.Stderr, "Unknown shell: %s\nSupported: bash, zsh, fish\n", shell)
		os.Exit(1)
	}
}

const bashCompletion = `_pph() {
    local cur prev words cword
    _init_completion || return

    local commands="harden analyze simulate recover verify export status forget compact keyring serve help completion"
    local meta="--house-name --phone-suffix --core-memory --handle-name --birthday-token --custom"

    if [[ $cword -eq 1 ]]; then
        COMPREPLY=($(compgen -W "$commands" -- "$cur"))
        return
    fi

    case "$prev" in
        --variant)
            COMPREPLY=($(compgen -W "short medium long" -- "$cur"))
            return
            ;;
        --strategy)
            COMPREPLY=($(compgen -W "sequential random" -- "$cur"))
            return
            ;;
        --profile|--keyring|--save)
            local profiles
            profiles=$(pph status 2>/dev/null | sed -n 's/^  \([^ ]*\) (.*/\1/p')
            COMPREPLY=($(compgen -W "$profiles" -- "$cur"))
            return
            ;;
        --file|--recovery-file|--out)
            _filedir json
            return
            ;;
    esac

    local cmd="${words[1]}"
    case "$cmd" in
        harden)
            COMPREPLY=($(compgen -W "$meta --save --overwrite --recovery-file --keyring --json" -- "$cur"))
            ;;
        analyze)
            COMPREPLY=($(compgen -W "--json" -- "$cur"))
            ;;
        simulate)
            COMPREPLY=($(compgen -W "--max-attempts --strategy --seed --json" -- "$cur"))
            ;;
        recover)
            COMPREPLY=($(compgen -W "$meta --profile --file --keyring --variant" -- "$cur"))
            ;;
        verify)
            COMPREPLY=($(compgen -W "--profile --variant" -- "$cur"))
            ;;
        export)
            COMPREPLY=($(compgen -W "--profile --out" -- "$cur"))
            ;;
        forget)
            local profiles
            profiles=$(pph status 2>/dev/null | sed -n 's/^  \([^ ]*\) (.*/\1/p')
            COMPREPLY=($(compgen -W "$profiles" -- "$cur"))
            ;;
        keyring)
            COMPREPLY=($(compgen -W "save delete status" -- "$cur"))
            ;;
        serve)
            COMPREPLY=($(compgen -W "--listen" -- "$cur"))
            ;;
        help)
            COMPREPLY=($(compgen -W "$commands" -- "$cur"))
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "$cur"))
            ;;
    esac
}

complete -F _pph pph
`

const zshCompletion = `#compdef pph

_pph() {
    local -a commands meta
    commands=(
        'harden:Derive hardened passwords from a base password and metadata'
        'analyze:Report entropy, strength and crack time'
        'simulate:Run a bounded brute-force demonstration'
        'recover:Regenerate a hardened password'
        'verify:Check a hardened password against a profile'
        'export:Write a profile recovery file'
        'status:Show vault profiles and git exposure'
        'forget:Remove profiles'
        'compact:Compact vault to reclaim disk space'
        'keyring:Manage recovery keys in OS keyring'
        'serve:Run the HTTP API'
        'help:Show help for a command'
        'completion:Generate shell completions'
    )
    meta=(
        '--house-name[House or street name]:value:'
        '--phone-suffix[Last digits of a phone number]:value:'
        '--core-memory[A memorable phrase]:value:'
        '--handle-name[A username or handle]:value:'
        '--birthday-token[A date token]:value:'
        '--custom[Any other value]:value:'
    )

    _arguments -C \
        '1: :->command' \
        '*: :->args'

    case "$state" in
        command)
            _describe -t commands 'pph commands' commands
            ;;
        args)
            case "${words[2]}" in
                harden)
                    _arguments $meta \
                        '--save[Save as vault profile]:profile:' \
                        '--overwrite[Replace an existing profile]' \
                        '--recovery-file[Write recovery file]:file:_files' \
                        '--keyring[Store recovery key in OS keyring]' \
                        '--json[Print JSON]'
                    ;;
                analyze)
                    _arguments '--json[Print JSON]'
                    ;;
                simulate)
                    _arguments \
                        '--max-attempts[Attempt limit]:number:' \
                        '--strategy[Guess order]:strategy:(sequential random)' \
                        '--seed[Random seed]:number:' \
                        '--json[Print JSON]'
                    ;;
                recover)
                    _arguments $meta \
                        '--profile[Vault profile]:profile:' \
                        '--file[Recovery file]:file:_files' \
                        '--keyring[Keyring profile]:profile:' \
                        '--variant[Variant]:variant:(short medium long)'
                    ;;
                verify)
                    _arguments \
                        '--profile[Vault profile]:profile:' \
                        '--variant[Variant]:variant:(short medium long)'
                    ;;
                export)
                    _arguments \
                        '--profile[Vault profile]:profile:' \
                        '--out[Output file]:file:_files'
                    ;;
                keyring)
                    _values 'subcommand' save delete status
                    ;;
                serve)
                    _arguments '--listen[Listen address]:address:'
                    ;;
                help)
                    _describe -t commands 'pph commands' commands
                    ;;
                completion)
                    _values 'shell' bash zsh fish
                    ;;
            esac
            ;;
    esac
}

_pph "$@"
`

const fishCompletion = `# pph fish completions

set -l commands harden analyze simulate recover verify export status forget compact keyring serve help completion

complete -c pph -f

# Commands
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a harden -d 'Derive hardened passwords'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a analyze -d 'Analyze password strength'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a simulate -d 'Brute-force demonstration'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a recover -d 'Regenerate a hardened password'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a verify -d 'Check a hardened password'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a export -d 'Write a recovery file'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a status -d 'Show vault status'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a forget -d 'Remove profiles'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a compact -d 'Compact vault'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a keyring -d 'Manage recovery keys in OS keyring'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a serve -d 'Run the HTTP API'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a help -d 'Show help'
complete -c pph -n "not __fish_seen_subcommand_from $commands" -a completion -d 'Generate completions'

# metadata flags
for sub in harden recover
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l house-name -r -d 'House or street name'
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l phone-suffix -r -d 'Last digits of a phone number'
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l core-memory -r -d 'A memorable phrase'
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l handle-name -r -d 'A username or handle'
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l birthday-token -r -d 'A date token'
    complete -c pph -n "__fish_seen_subcommand_from $sub" -l custom -r -d 'Any other value'
end

# harden flags
complete -c pph -n "__fish_seen_subcommand_from harden" -l save -r -d 'Save as vault profile'
complete -c pph -n "__fish_seen_subcommand_from harden" -l overwrite -d 'Replace an existing profile'
complete -c pph -n "__fish_seen_subcommand_from harden" -l recovery-file -r -F -d 'Write recovery file'
complete -c pph -n "__fish_seen_subcommand_from harden" -l keyring -d 'Store recovery key in keyring'

# recover, verify and export flags
complete -c pph -n "__fish_seen_subcommand_from recover verify export" -l profile -r -d 'Vault profile'
complete -c pph -n "__fish_seen_subcommand_from recover" -l file -r -F -d 'Recovery file'
complete -c pph -n "__fish_seen_subcommand_from recover verify" -l variant -r -a "short medium long"
complete -c pph -n "__fish_seen_subcommand_from export" -l out -r -F -d 'Output file'

# simulate flags
complete -c pph -n "__fish_seen_subcommand_from simulate" -l max-attempts -r -d 'Attempt limit'
complete -c pph -n "__fish_seen_subcommand_from simulate" -l strategy -r -a "sequential random"
complete -c pph -n "__fish_seen_subcommand_from simulate" -l seed -r -d 'Random seed'

complete -c pph -n "__fish_seen_subcommand_from harden analyze simulate" -l json -d 'Print JSON'
complete -c pph -n "__fish_seen_subcommand_from serve" -l listen -r -d 'Listen address'

# keyring subcommands
complete -c pph -n "__fish_seen_subcommand_from keyring" -a "save delete status"

# help completions
complete -c pph -n "__fish_seen_subcommand_from help" -a "$commands"

# completion completions
complete -c pph -n "__fish_seen_subcommand_from completion" -a "bash zsh fish"
`
